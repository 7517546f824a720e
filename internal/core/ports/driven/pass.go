package driven

import (
	"context"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// LLMPass is one request/response unit of the multi-pass extraction.
// The first pass receives document text, later passes receive the previous
// pass output serialised as JSON.
type LLMPass interface {
	// Name identifies the pass in logs and errors.
	Name() string

	// Schema returns the JSON Schema the response must satisfy.
	Schema() map[string]any

	// Messages builds the prompt for the given input.
	Messages(input string, doc domain.DocumentContext) ([]ChatMessage, error)
}

// ReferenceFieldsPass is optionally implemented by passes that declare
// which output fields carry references and which extractor normalises them.
type ReferenceFieldsPass interface {
	ReferenceFields() (extractor string, fields []string)
}

// FallbackMechanism extracts metadata without the model layer.
type FallbackMechanism interface {
	// Name identifies the mechanism in logs.
	Name() string

	// Extract returns the metadata and true, or false when nothing was found.
	Extract(ctx context.Context, doc domain.DocumentContext) (map[string]any, bool)
}
