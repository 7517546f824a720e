package services

import (
	"slices"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/jsonrepair"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// FieldNormalizer brings validated pass output into canonical shape.
type FieldNormalizer struct {
	refs driven.ReferenceExtractorRegistry
}

// NewFieldNormalizer creates a normalizer. refs may be nil, in which case
// reference extraction is skipped.
func NewFieldNormalizer(refs driven.ReferenceExtractorRegistry) *FieldNormalizer {
	return &FieldNormalizer{refs: refs}
}

// Normalize replaces nulls with the empty value of the field kind and
// deduplicates string lists. Keys outside the canonical set take their kind
// from the schema properties; nulls with no known kind are kept.
// The input map is not modified.
func (n *FieldNormalizer) Normalize(out map[string]any, schema *jsonrepair.Schema) map[string]any {
	var props map[string][]string
	if schema != nil {
		props = schema.Properties()
	}

	result := make(map[string]any, len(out))
	for key, value := range out {
		spec, canonical := domain.LookupField(key)

		if value == nil {
			switch {
			case canonical && spec.Kind == domain.KindList:
				result[key] = []string{}
			case canonical:
				result[key] = ""
			case slices.Contains(props[key], "array"):
				result[key] = []string{}
			case slices.Contains(props[key], "string"):
				result[key] = ""
			default:
				result[key] = nil
			}
			continue
		}

		if canonical && spec.Kind == domain.KindList {
			list, err := domain.CoerceList(value)
			if err != nil {
				logger.Debug("normalize.field: %s kept as is: %v", key, err)
				result[key] = value
				continue
			}
			result[key] = domain.UniqueStrings(list)
			continue
		}

		if items, ok := value.([]any); ok {
			if strs, ok := stringItems(items); ok {
				result[key] = domain.UniqueStrings(strs)
				continue
			}
		}
		result[key] = value
	}
	return result
}

// ApplyReferences replaces each named field with the references found in its
// values using the named extractor. A missing extractor logs a warning and
// leaves the output unchanged.
func (n *FieldNormalizer) ApplyReferences(out map[string]any, extractorName string, fields []string) map[string]any {
	if extractorName == "" || len(fields) == 0 {
		return out
	}
	if n.refs == nil {
		logger.Warn("references.skip: no extractor registry configured")
		return out
	}
	extractor, err := n.refs.Get(extractorName)
	if err != nil {
		logger.Warn("references.skip: %v", err)
		return out
	}

	result := make(map[string]any, len(out))
	for k, v := range out {
		result[k] = v
	}
	for _, field := range fields {
		value, ok := result[field]
		if !ok || value == nil {
			continue
		}
		values, err := domain.CoerceList(value)
		if err != nil {
			logger.Debug("references.field: %s skipped: %v", field, err)
			continue
		}
		result[field] = extractAll(extractor, values)
	}
	return result
}

func extractAll(extractor driven.ReferenceExtractor, values []string) []string {
	var refs []string
	for _, v := range values {
		refs = append(refs, extractor.ExtractReferences(v)...)
	}
	return domain.UniqueStrings(refs)
}

func stringItems(items []any) ([]string, bool) {
	strs := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		strs = append(strs, s)
	}
	return strs, true
}
