// Package ollama provides a model client for a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docmeta/internal/adapters/driven/llm"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ModelClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 120 * time.Second
	providerName   = "ollama"
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

// Client calls the /api/chat endpoint without streaming.
type Client struct {
	transport *llm.Transport
}

// options holds generation parameters.
type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   map[string]any `json:"format,omitempty"`
	Options  *options       `json:"options,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
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

// Generate sends messages and returns the assistant reply. The response
// schema is passed as the structured output format.
func (c *Client) Generate(ctx context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	target := opts.Target
	if err := target.Validate(); err != nil {
		return "", err
	}

	req := chatRequest{
		Model:    target.Model,
		Messages: make([]chatMessage, len(messages)),
		Stream:   false,
		Format:   opts.ResponseSchema,
		Options: &options{
			NumPredict:  opts.MaxTokens,
			Temperature: llm.Float(opts.Temperature),
		},
	}
	for i, m := range messages {
		req.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	var resp chatResponse
	if err := c.transport.PostJSON(ctx, llm.Request{
		Provider: providerName,
		URL:      strings.TrimRight(target.Endpoint, "/") + "/api/chat",
		Body:     req,
	}, &resp); err != nil {
		return "", err
	}

	if resp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", resp.Error)
	}
	return resp.Message.Content, nil
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}
