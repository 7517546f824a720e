package postprocessors

import (
	"context"
	"maps"
	"slices"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure FilenameAuthority implements the interface.
var _ driven.RecordProcessor = (*FilenameAuthority)(nil)

// FilenameAuthority overwrites canonical fields with the values parsed from
// the filename. Non-canonical filename keys are ignored.
type FilenameAuthority struct{}

// NewFilenameAuthority creates the processor.
func NewFilenameAuthority() *FilenameAuthority {
	return &FilenameAuthority{}
}

// Name returns the processor name.
func (f *FilenameAuthority) Name() string {
	return ProcessorFilenameAuthority
}

// Process applies the filename fields.
func (f *FilenameAuthority) Process(_ context.Context, rec *domain.Record, fc domain.FinalizeContext) (*domain.Record, error) {
	for _, key := range slices.Sorted(maps.Keys(fc.FilenameFields)) {
		if !domain.IsCanonical(key) {
			continue
		}
		if err := rec.Set(key, fc.FilenameFields[key]); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
