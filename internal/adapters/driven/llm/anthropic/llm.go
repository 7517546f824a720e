// Package anthropic provides a model client for the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docmeta/internal/adapters/driven/llm"
	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ModelClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 4096

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
	providerName     = "anthropic"
)

// Config holds configuration for the client.
type Config struct {
	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond throttles calls. Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the token bucket size (default: 1).
	Burst int

	// HTTPClient overrides the HTTP client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client calls the /v1/messages endpoint.
type Client struct {
	transport *llm.Transport
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient creates a client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		transport: llm.NewTransport(httpClient, llm.NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst)),
	}
}

// Generate sends messages and returns the concatenated text blocks.
// System messages are lifted into the system field. The API has no schema
// constrained output, so the response schema is appended to the system
// prompt as an instruction.
func (c *Client) Generate(ctx context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	target := opts.Target
	if err := target.Validate(); err != nil {
		return "", err
	}
	if target.APIKey == "" {
		return "", &domain.ConfigurationError{Field: "api_key"}
	}

	var system []string
	req := messagesRequest{
		Model:       target.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: llm.Float(opts.Temperature),
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	for _, m := range messages {
		if m.Role == driven.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		req.Messages = append(req.Messages, messagesMessage{Role: m.Role, Content: m.Content})
	}
	if opts.ResponseSchema != nil {
		instruction, err := schemaInstruction(opts.ResponseSchema)
		if err != nil {
			return "", err
		}
		system = append(system, instruction)
	}
	req.System = strings.Join(system, "\n\n")

	var resp messagesResponse
	if err := c.transport.PostJSON(ctx, llm.Request{
		Provider: providerName,
		URL:      strings.TrimRight(target.Endpoint, "/") + "/v1/messages",
		Headers: map[string]string{
			"x-api-key":         target.APIKey,
			"anthropic-version": anthropicVersion,
		},
		Body: req,
	}, &resp); err != nil {
		return "", err
	}

	if resp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", resp.Error.Message)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic: no response content returned")
	}

	// Concatenate all text content blocks
	var result strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	return result.String(), nil
}

func schemaInstruction(schema map[string]any) (string, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal response schema: %w", err)
	}
	return "Respond with a single JSON object, without any other text, that validates against this JSON Schema:\n" +
		string(data), nil
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}
