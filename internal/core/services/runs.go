package services

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
)

// Ensure RunService implements the interface.
var _ driving.RunService = (*RunService)(nil)

// RunService manages the run history.
type RunService struct {
	store     driven.RunStore
	exporters map[string]driven.Exporter
}

// NewRunService creates a run service with the given exporters.
func NewRunService(store driven.RunStore, exporters ...driven.Exporter) *RunService {
	s := &RunService{
		store:     store,
		exporters: make(map[string]driven.Exporter, len(exporters)),
	}
	for _, e := range exporters {
		s.exporters[e.Format()] = e
	}
	return s
}

// List returns runs matching filter, most recent first.
func (s *RunService) List(ctx context.Context, filter domain.RunFilter) ([]domain.RunRecord, error) {
	return s.store.List(ctx, filter)
}

// Get retrieves a run by ID.
func (s *RunService) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// Delete removes a run.
func (s *RunService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}

// Export renders the runs matching filter in format.
func (s *RunService) Export(
	ctx context.Context,
	filter domain.RunFilter,
	format string,
	columns []string,
) ([]byte, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: export format %q", domain.ErrUnsupportedType, format)
	}
	runs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return exporter.Export(ctx, runs, columns)
}

// Formats returns the registered export formats.
func (s *RunService) Formats() []string {
	return slices.Sorted(maps.Keys(s.exporters))
}
