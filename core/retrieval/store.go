package retrieval

import (
	"context"
	"errors"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

const (
	BackendPostgres = "postgres"
	BackendQdrant   = "qdrant"
	BackendMemory   = "memory"
)

var ErrUnknownBackend = errors.New("unknown vector store backend")

// Store is a nearest-neighbor index over chunk embeddings.
// Search returns at most topK chunks ordered by ascending cosine distance.
type Store interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]model.ScoredChunk, error)
	Insert(ctx context.Context, chunks []*model.Chunk) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
