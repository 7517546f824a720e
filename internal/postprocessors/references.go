package postprocessors

import (
	"context"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// Ensure References implements the interface.
var _ driven.RecordProcessor = (*References)(nil)

// References re-extracts references from the record's reference fields
// using the extractor named in the finalize context.
type References struct {
	refs   driven.ReferenceExtractorRegistry
	fields []string
}

// ReferencesOption configures a References processor.
type ReferencesOption func(*References)

// WithFields restricts the processor to the given fields.
func WithFields(fields ...string) ReferencesOption {
	return func(r *References) {
		r.fields = fields
	}
}

// NewReferences creates a references processor.
func NewReferences(refs driven.ReferenceExtractorRegistry, opts ...ReferencesOption) *References {
	r := &References{
		refs:   refs,
		fields: domain.ReferenceFields(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the processor name.
func (r *References) Name() string {
	return ProcessorReferences
}

// Process replaces each assigned reference field with the deduplicated
// references found in its values. A missing extractor leaves the record
// unchanged.
func (r *References) Process(_ context.Context, rec *domain.Record, fc domain.FinalizeContext) (*domain.Record, error) {
	if fc.ReferenceExtractor == "" || r.refs == nil {
		return rec, nil
	}

	extractor, err := r.refs.Get(fc.ReferenceExtractor)
	if err != nil {
		logger.Warn("postprocess.references: %v", err)
		return rec, nil
	}

	for _, field := range r.fields {
		if !rec.IsSet(field) {
			continue
		}
		spec, ok := domain.LookupField(field)
		if !ok || spec.Kind != domain.KindList {
			continue
		}

		var refs []string
		for _, value := range rec.List(field) {
			refs = append(refs, extractor.ExtractReferences(value)...)
		}
		if err := rec.SetList(field, refs); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
