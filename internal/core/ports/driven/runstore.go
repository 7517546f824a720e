package driven

import (
	"context"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// RunStore persists run history.
type RunStore interface {
	// Save creates or replaces a run record.
	Save(ctx context.Context, run *domain.RunRecord) error

	// Get retrieves a run by ID. Returns domain.ErrNotFound when missing.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns runs matching the filter, newest first.
	List(ctx context.Context, filter domain.RunFilter) ([]domain.RunRecord, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error
}

// Exporter writes run outputs to a tabular file format.
type Exporter interface {
	// Format returns the format name, e.g. "xlsx".
	Format() string

	// Export writes one row per run with the given columns.
	Export(ctx context.Context, runs []domain.RunRecord, columns []string) ([]byte, error)
}
