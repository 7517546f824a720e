package services

import "github.com/custodia-labs/docmeta/internal/core/domain"

// SchemaMapper projects a canonical record onto a consumer's output names.
type SchemaMapper struct{}

// NewSchemaMapper creates a schema mapper.
func NewSchemaMapper() *SchemaMapper {
	return &SchemaMapper{}
}

// Map returns only the mapped keys. Fields the record never assigned are
// omitted; fields assigned an empty value are kept.
func (m *SchemaMapper) Map(rec *domain.Record, fm domain.FieldMap) map[string]any {
	out := make(map[string]any, len(fm))
	if rec == nil {
		return out
	}
	for _, mapping := range fm {
		value, ok := rec.Get(mapping.Canonical)
		if !ok {
			continue
		}
		out[mapping.Output] = value
	}
	return out
}
