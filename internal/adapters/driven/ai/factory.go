// Package ai routes model calls to the provider adapters.
package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	anthropicllm "github.com/custodia-labs/docmeta/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docmeta/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docmeta/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.ModelClient = (*Router)(nil)

// ClientConfig is shared by every provider client.
type ClientConfig struct {
	// Timeout bounds one HTTP request.
	Timeout time.Duration

	// RequestsPerSecond throttles each provider client. Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int
}

// CreateModelClient creates the client serving provider.
// Azure and OpenAI share the chat completions client.
func CreateModelClient(provider domain.AIProvider, cfg ClientConfig) (driven.ModelClient, error) {
	switch provider {
	case domain.AIProviderAzure, domain.AIProviderOpenAI:
		return openaillm.NewClient(openaillm.Config{
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
		}), nil

	case domain.AIProviderAnthropic:
		return anthropicllm.NewClient(anthropicllm.Config{
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
		}), nil

	case domain.AIProviderOllama:
		return ollamallm.NewClient(ollamallm.Config{
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported model provider %q: %w", provider, domain.ErrUnsupportedType)
	}
}

// FactoryFunc creates a client for a provider.
type FactoryFunc func(provider domain.AIProvider) (driven.ModelClient, error)

// Router is a ModelClient that dispatches each call on the provider of its
// target. Provider clients are created on first use and shared afterwards,
// so the rate limit of a provider spans every run using it.
type Router struct {
	mu      sync.Mutex
	factory FactoryFunc
	clients map[domain.AIProvider]driven.ModelClient
}

// NewRouter creates a router backed by CreateModelClient.
func NewRouter(cfg ClientConfig) *Router {
	return NewRouterWithFactory(func(p domain.AIProvider) (driven.ModelClient, error) {
		return CreateModelClient(p, cfg)
	})
}

// NewRouterWithFactory creates a router with a custom client factory.
func NewRouterWithFactory(factory FactoryFunc) *Router {
	return &Router{
		factory: factory,
		clients: make(map[domain.AIProvider]driven.ModelClient),
	}
}

// Generate forwards the call to the client for opts.Target.Provider.
func (r *Router) Generate(ctx context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	client, err := r.client(opts.Target.Provider)
	if err != nil {
		return "", err
	}
	return client.Generate(ctx, messages, opts)
}

func (r *Router) client(provider domain.AIProvider) (driven.ModelClient, error) {
	if provider == "" {
		provider = domain.AIProviderAzure
	}
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: unknown provider %q: %w", domain.ErrConfiguration, provider, domain.ErrUnsupportedType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[provider]; ok {
		return c, nil
	}
	c, err := r.factory(provider)
	if err != nil {
		return nil, err
	}
	r.clients[provider] = c
	return c, nil
}

// Close closes every client created so far.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for p, c := range r.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.clients, p)
	}
	return firstErr
}
