package groq_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/adapter/groq"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := groq.NewClient(groq.Config{})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	var gotPath string
	var gotReq map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Paris."}, "finish_reason": "stop"},
			},
		})
	}))
	defer ts.Close()

	c, err := groq.NewClient(groq.Config{APIKey: "k", BaseURL: ts.URL})
	require.NoError(t, err)

	answer, err := c.Generate(context.Background(), "What is the capital of France?")
	require.NoError(t, err)

	assert.Equal(t, "Paris.", answer)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "llama-3.1-8b-instant", gotReq["model"])
	assert.InDelta(t, 0.7, gotReq["temperature"], 1e-9)

	messages := gotReq["messages"].([]any)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "What is the capital of France?", msg["content"])
}

func TestGenerate_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit"},
		})
	}))
	defer ts.Close()

	c, err := groq.NewClient(groq.Config{APIKey: "k", BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "q")
	require.ErrorIs(t, err, groq.ErrGeneration)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerate_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer ts.Close()

	c, err := groq.NewClient(groq.Config{APIKey: "k", BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, groq.ErrGeneration)
}
