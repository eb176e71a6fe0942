package pipeline

import (
	"context"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// ChunkFunc splits one scraped course into typed chunks.
// Returned chunks carry content, type, cohort name, source URL, field and metadata
// but no embedding.
type ChunkFunc func(course *model.CourseData) ([]*model.Chunk, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Pipeline combines chunking and embedding functions
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Process chunks a course and embeds every chunk.
func (p *Pipeline) Process(ctx context.Context, course *model.CourseData) ([]*model.Chunk, error) {
	chunks, err := p.Chunker(course)
	if err != nil {
		return nil, helper.NewError("chunk course", err)
	}

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, helper.NewError("context", err)
		}

		embedding, err := p.Embedder(ctx, chunk.Content)
		if err != nil {
			return nil, helper.NewError("embed chunk", err)
		}
		chunk.Embedding = embedding
	}

	return chunks, nil
}

// ProcessAll runs Process for every course and concatenates the chunks in course order.
func (p *Pipeline) ProcessAll(ctx context.Context, courses []model.CourseData) ([]*model.Chunk, error) {
	var all []*model.Chunk
	for i := range courses {
		chunks, err := p.Process(ctx, &courses[i])
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}
