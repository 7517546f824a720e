package driving

import (
	"context"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// ExtractionService extracts metadata from one document.
type ExtractionService interface {
	// Extract runs the pipeline on src. Failures are *domain.RunFailedError.
	Extract(ctx context.Context, src domain.RawSource) (*domain.RunResult, error)
}

// BatchService extracts metadata from many documents concurrently.
type BatchService interface {
	// ExtractAll processes every source. A failing document never cancels
	// the others; each item carries its own result or error.
	ExtractAll(ctx context.Context, sources []domain.RawSource) []BatchItem
}

// BatchItem is the outcome of one document in a batch.
type BatchItem struct {
	Source domain.RawSource
	Result *domain.RunResult
	Err    error
}

// RunService queries and exports run history.
type RunService interface {
	// List returns runs matching the filter, newest first.
	List(ctx context.Context, filter domain.RunFilter) ([]domain.RunRecord, error)

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// Delete removes a run.
	Delete(ctx context.Context, id string) error

	// Export renders the matching runs in the given format.
	Export(ctx context.Context, filter domain.RunFilter, format string, columns []string) ([]byte, error)
}
