package driven

import (
	"context"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// Loader turns a raw source into a Document.
// Errors are *domain.LoadError; a document without text is a load error.
type Loader interface {
	// Name returns the loader name used in configuration.
	Name() string

	// Extensions returns the file extensions handled, lower case with dot.
	Extensions() []string

	// Load reads the source into a Document.
	Load(ctx context.Context, src domain.RawSource) (*domain.Document, error)
}

// LoaderRegistry selects a loader by name or by filename.
type LoaderRegistry interface {
	// Get returns the loader registered under name.
	Get(name string) (Loader, error)

	// ForFilename returns the loader registered for the file extension.
	ForFilename(filename string) (Loader, error)
}

// FilenameParser derives initial metadata from a filename.
// It never fails; unparseable names degrade to defaults.
type FilenameParser interface {
	Parse(filename string) map[string]string
}
