package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/adapter/openai"
)

func TestNewEmbedder_RequiresKey(t *testing.T) {
	_, err := openai.NewEmbedder(openai.Config{})
	assert.Error(t, err)
}

func TestEmbedBatch(t *testing.T) {
	var gotAuth string
	var gotReq map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		// Out-of-order entries must land by index.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{0.4, 0.5}, "index": 1},
				{"embedding": []float64{0.1, 0.2}, "index": 0},
			},
		})
	}))
	defer ts.Close()

	e, err := openai.NewEmbedder(openai.Config{APIKey: "k", BaseURL: ts.URL, Model: "text-embedding-3-small"})
	require.NoError(t, err)

	vectors, err := e.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.4, 0.5}, vectors[1])
	assert.Equal(t, "Bearer k", gotAuth)
	assert.Equal(t, "text-embedding-3-small", gotReq["model"])
}

func TestEmbedBatch_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key", "type": "auth"},
		})
	}))
	defer ts.Close()

	e, err := openai.NewEmbedder(openai.Config{APIKey: "bad", BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = e.EmbedBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestEmbedBatch_MissingVector(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.1}, "index": 0}},
		})
	}))
	defer ts.Close()

	e, err := openai.NewEmbedder(openai.Config{APIKey: "k", BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = e.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestEmbed_Single(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{1, 2, 3}, "index": 0}},
		})
	}))
	defer ts.Close()

	e, err := openai.NewEmbedder(openai.Config{APIKey: "k", BaseURL: ts.URL})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	e, err := openai.NewEmbedder(openai.Config{APIKey: "k"})
	require.NoError(t, err)

	vectors, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}
