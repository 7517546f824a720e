package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

type captured struct {
	path    string
	query   string
	headers http.Header
	body    map[string]any
}

func newServer(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.query = r.URL.RawQuery
		c.headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server, c
}

var messages = []driven.ChatMessage{
	{Role: driven.RoleSystem, Content: "system prompt"},
	{Role: driven.RoleUser, Content: "document"},
}

func TestClient_Generate_Azure(t *testing.T) {
	server, got := newServer(t, http.StatusOK, `{"choices": [{"message": {"content": "{\"a\": 1}"}}]}`)
	client := NewClient(Config{HTTPClient: server.Client()})

	text, err := client.Generate(context.Background(), messages, driven.GenerateOptions{
		Target: domain.ModelTarget{
			Provider:   domain.AIProviderAzure,
			Model:      "gpt-4o-mini",
			APIVersion: "2024-10-21",
			Endpoint:   server.URL + "/",
			APIKey:     "secret",
		},
		MaxTokens:      100,
		ResponseSchema: map[string]any{"type": "object"},
		SchemaName:     "summary",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, text)
	assert.Equal(t, "/openai/deployments/gpt-4o-mini/chat/completions", got.path)
	assert.Equal(t, "api-version=2024-10-21", got.query)
	assert.Equal(t, "secret", got.headers.Get("api-key"))
	assert.Empty(t, got.headers.Get("Authorization"))
	assert.NotContains(t, got.body, "model")
	assert.Equal(t, float64(0), got.body["temperature"])
	assert.Equal(t, float64(100), got.body["max_tokens"])

	format := got.body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "summary", format["json_schema"].(map[string]any)["name"])

	msgs := got.body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestClient_Generate_OpenAI(t *testing.T) {
	server, got := newServer(t, http.StatusOK, `{"choices": [{"message": {"content": "hi"}}]}`)
	client := NewClient(Config{HTTPClient: server.Client()})

	text, err := client.Generate(context.Background(), messages, driven.GenerateOptions{
		Target: domain.ModelTarget{
			Provider: domain.AIProviderOpenAI,
			Model:    "gpt-4o",
			Endpoint: server.URL,
			APIKey:   "sk-test",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "hi", text)
	assert.Equal(t, "/chat/completions", got.path)
	assert.Equal(t, "Bearer sk-test", got.headers.Get("Authorization"))
	assert.Equal(t, "gpt-4o", got.body["model"])
	assert.NotContains(t, got.body, "response_format")
}

func TestClient_Generate_AzureWithoutKey(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.Generate(context.Background(), messages, driven.GenerateOptions{
		Target: domain.ModelTarget{Provider: domain.AIProviderAzure, Model: "m", Endpoint: "http://localhost"},
	})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestClient_Generate_MissingModel(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.Generate(context.Background(), messages, driven.GenerateOptions{
		Target: domain.ModelTarget{Provider: domain.AIProviderOpenAI, Endpoint: "http://localhost"},
	})

	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "model", ce.Field)
}

func TestClient_Generate_Errors(t *testing.T) {
	target := domain.ModelTarget{Provider: domain.AIProviderOpenAI, Model: "m", APIKey: "k"}

	t.Run("no choices", func(t *testing.T) {
		server, _ := newServer(t, http.StatusOK, `{"choices": []}`)
		target.Endpoint = server.URL
		_, err := NewClient(Config{HTTPClient: server.Client()}).Generate(context.Background(), messages, driven.GenerateOptions{Target: target})
		assert.ErrorContains(t, err, "no completion choices")
	})

	t.Run("api error body", func(t *testing.T) {
		server, _ := newServer(t, http.StatusOK, `{"error": {"message": "quota"}}`)
		target.Endpoint = server.URL
		_, err := NewClient(Config{HTTPClient: server.Client()}).Generate(context.Background(), messages, driven.GenerateOptions{Target: target})
		assert.ErrorContains(t, err, "quota")
	})

	t.Run("server error", func(t *testing.T) {
		server, _ := newServer(t, http.StatusServiceUnavailable, `{}`)
		target.Endpoint = server.URL
		_, err := NewClient(Config{HTTPClient: server.Client()}).Generate(context.Background(), messages, driven.GenerateOptions{Target: target})
		assert.True(t, errors.Is(err, domain.ErrLLMUnavailable))
	})
}
