// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// ModelClient sends chat messages to a model provider.
// Implementations must be safe for concurrent use. The model target travels
// with every call so that one client serves both the primary and the
// fallback model.
//
// Implementations include:
//   - Azure OpenAI and OpenAI-compatible servers
//   - Anthropic (Claude)
//   - Ollama (local models)
type ModelClient interface {
	// Generate returns the raw text of the model response.
	Generate(ctx context.Context, messages []ChatMessage, opts GenerateOptions) (string, error)

	// Close releases resources.
	Close() error
}

// GenerateOptions configures one model call.
type GenerateOptions struct {
	// Target is the resolved model route.
	Target domain.ModelTarget

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// ResponseSchema is the JSON Schema of the expected response, if any.
	ResponseSchema map[string]any

	// SchemaName names the schema for providers that require one.
	SchemaName string
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}
