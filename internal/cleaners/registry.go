package cleaners

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// BuilderFunc creates a cleaning step.
type BuilderFunc func() driven.Cleaner

// Registry maps step names to their builders.
// It allows pipelines to be assembled from step names declared in config.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

// NewRegistry creates a new, empty step registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a step builder to the registry.
// Name should match the step's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.builders[name]; ok {
		return fmt.Errorf("cleaner %q: %w", name, domain.ErrAlreadyExists)
	}
	r.builders[name] = builder
	return nil
}

// Build creates a step by name.
func (r *Registry) Build(name string) (driven.Cleaner, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown cleaner %q: %w", name, domain.ErrNotFound)
	}
	return builder(), nil
}

// BuildPipeline assembles a pipeline from step names, in order.
func (r *Registry) BuildPipeline(names []string) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range names {
		step, err := r.Build(name)
		if err != nil {
			return nil, err
		}
		p.Add(step)
	}
	return p, nil
}

// Has returns true if a step with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered step names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
