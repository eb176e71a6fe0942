package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/knights-analytics/hugot"
	"github.com/ollama/ollama/api"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
)

const (
	DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultEmbeddingDim   = 384
)

// DefaultEmbedder creates an embedder using a real sentence transformer model
// Uses the all-MiniLM-L6-v2 model which produces 384-dimensional embeddings
func DefaultEmbedder(modelDir string) (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(modelDir, DefaultEmbeddingModel, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	var mu sync.Mutex
	return func(ctx context.Context, text string) ([]float32, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mu.Lock()
		if err := ctx.Err(); err != nil {
			mu.Unlock()
			return nil, err
		}
		result, err := sentencePipeline.RunPipeline([]string{text})
		mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		return result.Embeddings[0], nil
	}, nil
}

// OllamaEmbedderOptions configures OllamaEmbedder.
type OllamaEmbedderOptions struct {
	Model          string
	MaxRetries     int
	BaseDelay      time.Duration
	RequestTimeout time.Duration
	MaxInputChars  int // longer input is truncated
}

// OllamaEmbedder creates an embedder backed by an Ollama server.
// Failed requests are retried with exponential backoff.
func OllamaEmbedder(client *api.Client, opts OllamaEmbedderOptions) EmbedFunc {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = 2048
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		if len(text) > opts.MaxInputChars {
			text = text[:opts.MaxInputChars]
		}
		req := &api.EmbeddingRequest{
			Model:  opts.Model,
			Prompt: text,
		}

		var lastErr error
		for attempt := 0; attempt < opts.MaxRetries; attempt++ {
			reqCtx, cancel := context.WithTimeout(ctx, opts.RequestTimeout)
			resp, err := client.Embeddings(reqCtx, req)
			cancel()
			if err == nil {
				if len(resp.Embedding) == 0 {
					return nil, fmt.Errorf("no embedding generated")
				}
				embedding := make([]float32, len(resp.Embedding))
				for i, v := range resp.Embedding {
					embedding[i] = float32(v)
				}
				return embedding, nil
			}
			lastErr = err

			if attempt == opts.MaxRetries-1 {
				break
			}
			delay := time.Duration(math.Pow(2, float64(attempt))) * opts.BaseDelay
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		return nil, fmt.Errorf("embedding failed after %d attempts: %w", opts.MaxRetries, lastErr)
	}
}

// HashingEmbedder creates a deterministic bag-of-words embedder that needs no model.
// Each lowercased word is hashed into one of dim buckets and the vector is L2 normalized,
// so texts sharing words have a small cosine distance.
func HashingEmbedder(dim int) EmbedFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if dim <= 0 {
			return nil, fmt.Errorf("embedding dimension must be positive")
		}

		embedding := make([]float32, dim)
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, word := range words {
			h := fnv.New32a()
			h.Write([]byte(word))
			embedding[h.Sum32()%uint32(dim)]++
		}

		var norm float64
		for _, v := range embedding {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			embedding[0] = 1
			return embedding, nil
		}
		norm = math.Sqrt(norm)
		for i := range embedding {
			embedding[i] = float32(float64(embedding[i]) / norm)
		}
		return embedding, nil
	}
}
