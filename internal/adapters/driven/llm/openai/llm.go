// Package openai provides a model client for Azure OpenAI deployments and
// OpenAI-compatible chat completion APIs.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
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
	DefaultTimeout    = 120 * time.Second
	DefaultAPIVersion = "2024-08-01-preview"
	providerName      = "openai"
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

// Client calls the chat completions endpoint.
// Targets with the azure provider are routed to the deployment URL and
// authenticate with an api-key header; others use a bearer token.
type Client struct {
	transport *llm.Transport
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model          string              `json:"model,omitempty"`
	Messages       []chatCompletionMsg `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    *float64            `json:"temperature,omitempty"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
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

// Generate sends messages and returns the content of the first choice.
func (c *Client) Generate(ctx context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	target := opts.Target
	if err := target.Validate(); err != nil {
		return "", err
	}

	req := chatCompletionRequest{
		Messages:    make([]chatCompletionMsg, len(messages)),
		MaxTokens:   opts.MaxTokens,
		Temperature: llm.Float(opts.Temperature),
	}
	for i, m := range messages {
		req.Messages[i] = chatCompletionMsg{Role: m.Role, Content: m.Content}
	}
	if opts.ResponseSchema != nil {
		name := opts.SchemaName
		if name == "" {
			name = "response"
		}
		req.ResponseFormat = &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchema{Name: name, Schema: opts.ResponseSchema},
		}
	}

	endpoint, headers, err := route(target)
	if err != nil {
		return "", err
	}
	if target.Provider != domain.AIProviderAzure {
		req.Model = target.Model
	}

	var resp chatCompletionResponse
	if err := c.transport.PostJSON(ctx, llm.Request{
		Provider: providerName,
		URL:      endpoint,
		Headers:  headers,
		Body:     req,
	}, &resp); err != nil {
		return "", err
	}

	if resp.Error != nil {
		return "", fmt.Errorf("openai error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// route builds the request URL and auth headers for a target.
func route(t domain.ModelTarget) (string, map[string]string, error) {
	base := strings.TrimRight(t.Endpoint, "/")

	if t.Provider == domain.AIProviderAzure {
		if t.APIKey == "" {
			return "", nil, &domain.ConfigurationError{Field: "api_key"}
		}
		version := t.APIVersion
		if version == "" {
			version = DefaultAPIVersion
		}
		endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			base, url.PathEscape(t.Model), url.QueryEscape(version))
		return endpoint, map[string]string{"api-key": t.APIKey}, nil
	}

	headers := map[string]string{}
	if t.APIKey != "" {
		headers["Authorization"] = "Bearer " + t.APIKey
	}
	return base + "/chat/completions", headers, nil
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}
