package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestDefaultEmbedder(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
	}

	embedder, err := DefaultEmbedder(t.TempDir())
	require.NoError(t, err)

	t.Run("Generate embedding for text", func(t *testing.T) {
		embedding, err := embedder(context.Background(), "What is the cost of the data analyst course?")
		require.NoError(t, err)
		assert.Equal(t, DefaultEmbeddingDim, len(embedding), "all-MiniLM-L6-v2 produces 384-dimensional embeddings")
	})

	t.Run("Same text produces same embedding", func(t *testing.T) {
		a, err := embedder(context.Background(), "Deterministic embedding test")
		require.NoError(t, err)
		b, err := embedder(context.Background(), "Deterministic embedding test")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestHashingEmbedder(t *testing.T) {
	embedder := HashingEmbedder(64)
	ctx := context.Background()

	t.Run("Embedding is normalized and deterministic", func(t *testing.T) {
		a, err := embedder(ctx, "Data Analyst cost")
		require.NoError(t, err)
		b, err := embedder(ctx, "data analyst COST")
		require.NoError(t, err)
		assert.Equal(t, a, b, "Expected case insensitive tokens")
		assert.InDelta(t, 1.0, cosine(a, a), 1e-5)
	})

	t.Run("Shared words are closer than disjoint words", func(t *testing.T) {
		q, _ := embedder(ctx, "data analyst cost")
		near, _ := embedder(ctx, "Batch Information for Data Analyst: Cost 39999")
		far, _ := embedder(ctx, "mentors instructors placement")
		assert.Greater(t, cosine(q, near), cosine(q, far))
	})

	t.Run("Empty text still yields a unit vector", func(t *testing.T) {
		e, err := embedder(ctx, "")
		require.NoError(t, err)
		assert.Len(t, e, 64)
		assert.Equal(t, float32(1), e[0])
	})

	t.Run("Invalid dimension", func(t *testing.T) {
		_, err := HashingEmbedder(0)(ctx, "x")
		assert.Error(t, err)
	})
}

func TestOllamaEmbedder(t *testing.T) {
	newClient := func(t *testing.T, handler http.HandlerFunc) *api.Client {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		base, err := url.Parse(server.URL)
		require.NoError(t, err)
		return api.NewClient(base, server.Client())
	}

	t.Run("Returns the embedding as float32", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/embeddings", r.URL.Path)
			var req api.EmbeddingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nomic-embed-text", req.Model)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{0.5, -0.25}})
		})

		embedder := OllamaEmbedder(client, OllamaEmbedderOptions{Model: "nomic-embed-text"})
		embedding, err := embedder(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, -0.25}, embedding)
	})

	t.Run("Retries until success", func(t *testing.T) {
		var calls int32
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 2 {
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "busy"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{1}})
		})

		embedder := OllamaEmbedder(client, OllamaEmbedderOptions{Model: "m", BaseDelay: time.Millisecond})
		_, err := embedder(context.Background(), "hello")
		require.NoError(t, err)
		assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		var calls int32
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "down"})
		})

		embedder := OllamaEmbedder(client, OllamaEmbedderOptions{Model: "m", MaxRetries: 2, BaseDelay: time.Millisecond})
		_, err := embedder(context.Background(), "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempts")
		assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	})
}
