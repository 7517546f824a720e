package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
	seq  map[string]int
	next int
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.RunRecord),
		seq:  make(map[string]int),
	}
}

// Save creates or replaces a run record.
func (s *RunStore) Save(_ context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seq[run.ID]; !ok {
		s.next++
		s.seq[run.ID] = s.next
	}
	s.runs[run.ID] = cloneRun(*run)
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %q: %w", id, domain.ErrNotFound)
	}
	run = cloneRun(run)
	return &run, nil
}

// List returns runs matching the filter, newest first. Runs started at
// the same instant are ordered by insertion, latest first.
func (s *RunStore) List(_ context.Context, filter domain.RunFilter) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []domain.RunRecord
	for _, run := range s.runs {
		if filter.Filename != "" && run.Filename != filter.Filename {
			continue
		}
		if filter.FailedOnly && run.Succeeded() {
			continue
		}
		runs = append(runs, cloneRun(run))
	}

	slices.SortFunc(runs, func(a, b domain.RunRecord) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return s.seq[b.ID] - s.seq[a.ID]
	})

	if filter.Limit > 0 && len(runs) > filter.Limit {
		runs = runs[:filter.Limit]
	}
	return runs, nil
}

// Delete removes a run.
func (s *RunStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	delete(s.seq, id)
	return nil
}

// cloneRun copies the output map and its lists.
func cloneRun(run domain.RunRecord) domain.RunRecord {
	if run.Output == nil {
		return run
	}
	out := maps.Clone(run.Output)
	for k, v := range out {
		if list, ok := v.([]string); ok {
			out[k] = slices.Clone(list)
		}
	}
	run.Output = out
	return run
}
