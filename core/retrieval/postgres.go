package retrieval

import (
	"context"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/database"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// PostgresStore is a Store backed by the pgvector chunks table.
type PostgresStore struct {
	chunks *database.ChunksDBHandler
}

// NewPostgresStore creates a store on top of an initialized chunks handler.
func NewPostgresStore(chunks *database.ChunksDBHandler) *PostgresStore {
	return &PostgresStore{chunks: chunks}
}

func (s *PostgresStore) Search(ctx context.Context, embedding []float32, topK int) ([]model.ScoredChunk, error) {
	scored, err := s.chunks.SelectChunksBySimilarity(ctx, embedding, topK)
	if err != nil {
		return nil, helper.NewError("select chunks by similarity", err)
	}
	return scored, nil
}

func (s *PostgresStore) Insert(ctx context.Context, chunks []*model.Chunk) error {
	for _, chunk := range chunks {
		if err := s.chunks.InsertChunk(ctx, chunk); err != nil {
			return helper.NewError("insert chunk", err)
		}
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	count, err := s.chunks.CountChunks(ctx)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}
	return count, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.chunks.DeleteAllChunks(ctx); err != nil {
		return helper.NewError("delete all chunks", err)
	}
	return nil
}
