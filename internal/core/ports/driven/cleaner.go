package driven

import "github.com/custodia-labs/docmeta/internal/core/domain"

// Cleaner is one step of the text cleaning pipeline.
// Steps are pure: they return the transformed text and never fail. A step
// without applicable configuration returns its input unchanged.
type Cleaner interface {
	// Name returns the step name used in configuration.
	Name() string

	// Clean transforms text using the cleaning rules.
	Clean(text string, cfg *domain.CleaningConfig) string
}

// Chunker bounds the text sent to the model.
type Chunker interface {
	// Chunk splits or reduces text. It always returns at least one chunk.
	Chunk(text string) []string
}
