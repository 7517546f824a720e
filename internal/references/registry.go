package references

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ReferenceExtractorRegistry = (*Registry)(nil)

// Factory creates a reference extractor.
type Factory func() driven.ReferenceExtractor

// NotFoundError reports an unregistered extractor name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reference extractor %q: %s", e.Name, domain.ErrNotFound)
}

// Is matches domain.ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == domain.ErrNotFound }

// Registry maps extractor names to factories.
// Registration happens at startup; lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default is the process-wide registry holding the built-in extractors.
var Default = NewRegistry()

func init() {
	if err := RegisterDefaults(Default); err != nil {
		panic(err)
	}
}

// Register adds an extractor factory. Names are unique.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("reference extractor %q: %w", name, domain.ErrAlreadyExists)
	}
	r.factories[name] = factory
	return nil
}

// Get creates the extractor registered under name.
// Unknown names return a *NotFoundError.
func (r *Registry) Get(name string) (driven.ReferenceExtractor, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return factory(), nil
}

// Has returns true if an extractor with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
