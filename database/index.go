package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
)

const (
	IndexTypeHNSW    = "hnsw"
	IndexTypeIVFFlat = "ivfflat"
)

// IndexOptions configures the vector index of the chunks table.
// Zero values fall back to the pgvector defaults.
type IndexOptions struct {
	Type           string `mapstructure:"type"`
	M              int    `mapstructure:"m"`               // hnsw
	EfConstruction int    `mapstructure:"ef_construction"` // hnsw
	Lists          int    `mapstructure:"lists"`           // ivfflat
}

// ChangeIndexType rebuilds the embedding index with the given type and parameters.
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, opts IndexOptions) error {
	var createIndexSQL string
	switch opts.Type {
	case IndexTypeHNSW:
		m := 16
		efConstruction := 64
		if opts.M > 0 {
			m = opts.M
		}
		if opts.EfConstruction > 0 {
			efConstruction = opts.EfConstruction
		}
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)
	case IndexTypeIVFFlat:
		lists := 100
		if opts.Lists > 0 {
			lists = opts.Lists
		}
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)
	default:
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", opts.Type))
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_chunks_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = tx.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	h.db.Logger.Info("Rebuilt vector index", "type", opts.Type)

	return nil
}
