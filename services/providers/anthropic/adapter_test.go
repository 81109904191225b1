package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/lead-gateway/services/providers"
)

func newMessagesServer(t *testing.T, status int, response string, captured *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewAdapter(t *testing.T) {
	_, err := NewAdapter(Config{})
	assert.Error(t, err)

	adapter, err := NewAdapter(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, adapter.Model())
}

func TestAdapter_Complete(t *testing.T) {
	var captured map[string]any
	server := newMessagesServer(t, http.StatusOK, `{
		"id": "msg_01",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "Hello "}, {"type": "text", "text": "John"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 12, "output_tokens": 4}
	}`, &captured)

	adapter, err := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := adapter.Complete(context.Background(), providers.CompletionRequest{
		SystemRole: "You write whatsapp messages.",
		Prompt:     `{"values":{"contact_name":"John"}}`,
		MaxTokens:  150,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello John", text)

	assert.Equal(t, float64(150), captured["max_tokens"])
	assert.Equal(t, DefaultModel, captured["model"])
	system, ok := captured["system"].([]any)
	require.True(t, ok)
	assert.Equal(t, "You write whatsapp messages.", system[0].(map[string]any)["text"])
}

func TestAdapter_Complete_APIError(t *testing.T) {
	server := newMessagesServer(t, http.StatusUnauthorized,
		`{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`, nil)

	adapter, err := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = adapter.Complete(context.Background(), providers.CompletionRequest{Prompt: "x", MaxTokens: 10})
	require.Error(t, err)

	var provErr *providers.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, "anthropic", provErr.Vendor)
	assert.Equal(t, http.StatusUnauthorized, provErr.StatusCode)
}

func TestNew_WithoutEmbedder(t *testing.T) {
	server := newMessagesServer(t, http.StatusOK, `{
		"id": "msg_02", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "CTO at Acme, evaluating."}],
		"stop_reason": "end_turn", "usage": {"input_tokens": 1, "output_tokens": 1}
	}`, nil)

	p, err := New(Config{APIKey: "test-key", BaseURL: server.URL}, map[providers.TemplateName]providers.Template{
		providers.TemplateSummary:  {SystemRole: "s", PromptTemplate: "p"},
		providers.TemplateEmail:    {SystemRole: "s", PromptTemplate: "p"},
		providers.TemplateWhatsApp: {SystemRole: "s", PromptTemplate: "p"},
	})
	require.NoError(t, err)
	assert.Equal(t, Identity, p.Identity())

	env := p.GetSummary(context.Background(), providers.Lead{"contact_name": "John"})
	require.True(t, env.OK)
	assert.Equal(t, "CTO at Acme, evaluating.", env.Value.LeadSummary)
	assert.False(t, env.Value.Metadata.EmbeddingGenerated)
	assert.Equal(t, "claudeprovider", env.Value.Metadata.Source)
}
