package driven

import (
	"context"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// RecordProcessor finalises the merged record after extraction.
// Processors are chained in a pipeline (e.g., reference normalisation,
// filename authority).
type RecordProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process returns the processed record. Implementations may modify rec
	// in place and return it.
	Process(ctx context.Context, rec *domain.Record, fc domain.FinalizeContext) (*domain.Record, error)
}

// RecordProcessorPipeline chains multiple RecordProcessors.
type RecordProcessorPipeline interface {
	// Process runs the record through all processors in order.
	Process(ctx context.Context, rec *domain.Record, fc domain.FinalizeContext) (*domain.Record, error)
}
