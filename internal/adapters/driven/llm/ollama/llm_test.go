package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

func TestClient_Generate(t *testing.T) {
	var (
		path string
		body map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": "{}"}, "done": true}`))
	}))
	defer server.Close()

	client := NewClient(Config{HTTPClient: server.Client()})
	text, err := client.Generate(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleUser, Content: "hello"},
	}, driven.GenerateOptions{
		Target:         domain.ModelTarget{Provider: domain.AIProviderOllama, Model: "llama3", Endpoint: server.URL},
		MaxTokens:      64,
		Temperature:    0.2,
		ResponseSchema: map[string]any{"type": "object"},
	})

	require.NoError(t, err)
	assert.Equal(t, "{}", text)
	assert.Equal(t, "/api/chat", path)
	assert.Equal(t, "llama3", body["model"])
	assert.Equal(t, false, body["stream"])
	assert.Equal(t, map[string]any{"type": "object"}, body["format"])

	opts := body["options"].(map[string]any)
	assert.Equal(t, float64(64), opts["num_predict"])
	assert.InDelta(t, 0.2, opts["temperature"], 1e-9)
}

func TestClient_Generate_ErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer server.Close()

	client := NewClient(Config{HTTPClient: server.Client()})
	_, err := client.Generate(context.Background(), nil, driven.GenerateOptions{
		Target: domain.ModelTarget{Provider: domain.AIProviderOllama, Model: "x", Endpoint: server.URL},
	})

	assert.ErrorContains(t, err, "model not found")
}
