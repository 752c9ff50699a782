package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matric-memory/internal/types"
)

func TestOllamaEmbedReturnsOneVectorPerText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3, 0.4}})
	}))
	defer srv.Close()

	o := NewOllamaBackend(srv.URL, "")
	vecs, err := o.Embed(context.Background(), []string{"a", "b"}, types.EmbeddingConfig{Model: "nomic-embed-text"})

	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 4)
}

func TestOllamaEmbedTruncatesForMRL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{1, 2, 3, 4, 5, 6}})
	}))
	defer srv.Close()

	dim := 3
	o := NewOllamaBackend(srv.URL, "")
	vecs, err := o.Embed(context.Background(), []string{"a"}, types.EmbeddingConfig{
		Model:              "mrl-model",
		SupportsMRL:        true,
		DefaultTruncateDim: &dim,
	})

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vecs[0])
}

func TestOllamaEmbedPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := NewOllamaBackend(srv.URL, "")
	_, err := o.Embed(context.Background(), []string{"a"}, types.EmbeddingConfig{Model: "x"})
	assert.Error(t, err)
}

func TestOllamaGenerateReturnsResponseText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "hello there", Done: true})
	}))
	defer srv.Close()

	o := NewOllamaBackend(srv.URL, "llama3")
	text, err := o.Generate(context.Background(), "say hi", GenerateOptions{MaxTokens: 64})

	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
}

func TestOllamaHealthCheckOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o := NewOllamaBackend(srv.URL, "")
	assert.NoError(t, o.HealthCheck(context.Background()))
}

func TestOllamaHealthCheckFailsOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	o := NewOllamaBackend(srv.URL, "")
	assert.Error(t, o.HealthCheck(context.Background()))
}
