package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
	loadSql "github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(ctx context.Context, chunk *model.Chunk) error
	DeleteChunk(ctx context.Context, id int) error
	DeleteAllChunks(ctx context.Context) (int64, error)
	SelectChunk(ctx context.Context, id int) (*model.Chunk, error)
	SelectChunksByCourse(ctx context.Context, courseID int) ([]*model.Chunk, error)
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int) ([]model.ScoredChunk, error)
	CountChunks(ctx context.Context) (int, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NewChunksDBHandler creates a new chunks database handler.
// It loads chunk-related SQL functions and creates the table with the given embedding dimension.
// If force is true, it will reload the SQL functions even if they already exist.
// The courses table must exist before, since chunks reference it.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler", "embedding_dim", embeddingDim)

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates the vector and lookup indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init chunks", err)
	}

	h.db.Logger.Debug("Checked/created table chunks")

	return nil
}

// EmbeddingDim returns the dimension of the embedding column.
func (h *ChunksDBHandler) EmbeddingDim() int {
	return h.embeddingDim
}

// InsertChunk inserts a new chunk. The embedding must match the table dimension.
func (h *ChunksDBHandler) InsertChunk(ctx context.Context, chunk *model.Chunk) error {
	if len(chunk.Embedding) != h.embeddingDim {
		return helper.NewError("embedding validation", fmt.Errorf("expected embedding of dimension %d, got %d", h.embeddingDim, len(chunk.Embedding)))
	}

	var rid interface{}
	if chunk.RID != uuid.Nil {
		rid = chunk.RID
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		chunk.CourseID,
		rid,
		chunk.Content,
		string(chunk.Type),
		chunk.CohortName,
		chunk.SourceURL,
		chunk.Field,
		pgvector.NewVector(chunk.Embedding),
		chunk.Metadata,
	)

	err := scanChunk(row, chunk)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteChunk deletes a chunk by ID
func (h *ChunksDBHandler) DeleteChunk(ctx context.Context, id int) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_chunk($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteAllChunks removes every chunk and returns how many were deleted.
func (h *ChunksDBHandler) DeleteAllChunks(ctx context.Context) (int64, error) {
	var deleted int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT delete_all_chunks()`).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(ctx context.Context, id int) (*model.Chunk, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_chunk($1)`,
		id,
	)

	chunk := &model.Chunk{}
	err := scanChunk(row, chunk)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByCourse retrieves all chunks of a course in insertion order
func (h *ChunksDBHandler) SelectChunksByCourse(ctx context.Context, courseID int) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_course($1)`,
		courseID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := scanChunk(rows, chunk)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksBySimilarity returns up to limit chunks ordered by ascending
// cosine distance to embedding. Index is the position in that order.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int) ([]model.ScoredChunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2)`,
		pgvector.NewVector(embedding),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var scored []model.ScoredChunk
	for rows.Next() {
		chunk := &model.Chunk{}
		var distance float64
		var chunkType string
		err := rows.Scan(
			&chunk.ID,
			&chunk.RID,
			&chunk.CourseID,
			&chunk.Content,
			&chunkType,
			&chunk.CohortName,
			&chunk.SourceURL,
			&chunk.Field,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunk.Type = model.ChunkType(chunkType)

		scored = append(scored, model.ScoredChunk{
			Chunk:    chunk,
			Distance: distance,
			Index:    len(scored),
		})
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return scored, nil
}

// CountChunks returns the number of stored chunks.
func (h *ChunksDBHandler) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_chunks()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

var _ rowScanner = (*sql.Row)(nil)
var _ rowScanner = (*sql.Rows)(nil)

func scanChunk(row rowScanner, chunk *model.Chunk) error {
	var chunkType string
	err := row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.CourseID,
		&chunk.Content,
		&chunkType,
		&chunk.CohortName,
		&chunk.SourceURL,
		&chunk.Field,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return err
	}
	chunk.Type = model.ChunkType(chunkType)
	return nil
}
