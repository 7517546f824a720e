package loaders

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps loader names and file extensions to loaders.
type Registry struct {
	mu          sync.RWMutex
	byName      map[string]driven.Loader
	byExtension map[string]driven.Loader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:      make(map[string]driven.Loader),
		byExtension: make(map[string]driven.Loader),
	}
}

// Register adds a loader. Names and extensions must be unique.
func (r *Registry) Register(loader driven.Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := loader.Name()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("loader %q: %w", name, domain.ErrAlreadyExists)
	}
	for _, ext := range loader.Extensions() {
		if other, ok := r.byExtension[strings.ToLower(ext)]; ok {
			return fmt.Errorf("extension %s already handled by %q: %w", ext, other.Name(), domain.ErrAlreadyExists)
		}
	}

	r.byName[name] = loader
	for _, ext := range loader.Extensions() {
		r.byExtension[strings.ToLower(ext)] = loader
	}
	return nil
}

// Get returns the loader registered under name.
func (r *Registry) Get(name string) (driven.Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loader, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("loader %q: %w", name, domain.ErrNotFound)
	}
	return loader, nil
}

// ForFilename returns the loader for the file extension of filename.
func (r *Registry) ForFilename(filename string) (driven.Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, fmt.Errorf("%s: no file extension: %w", filename, domain.ErrUnsupportedType)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	loader, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%s: no loader for %s: %w", filename, ext, domain.ErrUnsupportedType)
	}
	return loader, nil
}

// Names returns the registered loader names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Extensions returns every handled extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// RegisterDefaults registers the built-in loaders.
func RegisterDefaults(r *Registry) error {
	for _, l := range []driven.Loader{NewDictLoader(), NewTextLoader(), NewHTMLLoader(), NewDOCXLoader()} {
		if err := r.Register(l); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRegistry returns a registry with the built-in loaders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Built-in names and extensions are distinct, registration cannot fail.
	_ = RegisterDefaults(r)
	return r
}
