package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/lead-gateway/services/providers"
)

func TestNewAdapter_RequiresKey(t *testing.T) {
	_, err := NewAdapter(context.Background(), Config{})
	assert.Error(t, err)
}

func TestAdapter_Complete(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/"+DefaultModel+":generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Hola John"}]}, "finishReason": "STOP"}]
		}`))
	}))
	defer server.Close()

	adapter, err := NewAdapter(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, adapter.Model())

	text, err := adapter.Complete(context.Background(), providers.CompletionRequest{
		SystemRole: "You write whatsapp messages.",
		Prompt:     `{"values":{}}`,
		MaxTokens:  150,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hola John", text)

	generation, ok := captured["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(150), generation["maxOutputTokens"])
	assert.Contains(t, captured, "systemInstruction")
}
