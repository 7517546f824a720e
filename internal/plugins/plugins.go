// Package plugins bundles the per document family policy of an extraction:
// filename parsing, cleaning steps, LLM passes, reference extraction,
// the deterministic fallback, the output field map and static metadata.
//
// A Profile is built by name from a Registry. Profiles are registered once
// at start-up and the set is closed afterwards.
package plugins

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Profile is the extraction policy for one document family.
type Profile struct {
	// Name identifies the profile in configuration and run history.
	Name string

	// Parser derives initial metadata from the filename.
	Parser driven.FilenameParser

	// CleaningSteps names the cleaning steps in order.
	CleaningSteps []string

	// Passes are run in order by the pass pipeline.
	Passes []driven.LLMPass

	// ReferenceExtractor names the extractor used for reference fields.
	ReferenceExtractor string

	// Fallback runs when the model layer fails. Nil for none.
	Fallback driven.FallbackMechanism

	// FieldMap is the default output projection.
	FieldMap domain.FieldMap

	// Injected is stamped onto every record.
	Injected domain.InjectedMetadata
}

// Deps are the shared collaborators handed to profile builders.
type Deps struct {
	// Prompts overrides the built-in pass prompts. Optional.
	Prompts driven.PromptStore

	// References resolves reference extractors. Optional.
	References driven.ReferenceExtractorRegistry

	// Chunker bounds document text embedded in later passes. Optional.
	Chunker driven.Chunker
}

// BuilderFunc creates a profile.
type BuilderFunc func(deps Deps) (*Profile, error)

// Registry maps profile names to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder. Names can be registered once and not at all
// after Close.
func (r *Registry) Register(name string, builder BuilderFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("register profile %q: registry is closed", name)
	}
	if _, ok := r.builders[name]; ok {
		return fmt.Errorf("profile %q: %w", name, domain.ErrAlreadyExists)
	}
	r.builders[name] = builder
	return nil
}

// Close prevents further registrations.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// Build creates the named profile.
func (r *Registry) Build(name string, deps Deps) (*Profile, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("profile %q: %w", name, domain.ErrNotFound)
	}
	p, err := builder(deps)
	if err != nil {
		return nil, fmt.Errorf("build profile %q: %w", name, err)
	}
	return p, nil
}

// Has reports whether a profile is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered profile names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
