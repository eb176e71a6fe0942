package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/pipeline"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// Engine embeds a question and searches the vector store.
type Engine struct {
	store   Store
	embed   pipeline.EmbedFunc
	timeout time.Duration
	logger  *slog.Logger
}

// NewEngine creates a new retrieval engine. A non-positive timeout uses the default search timeout.
func NewEngine(store Store, embed pipeline.EmbedFunc, timeout time.Duration, logger *slog.Logger) *Engine {
	if timeout <= 0 {
		timeout = model.DefaultQueryConfig().SearchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		embed:   embed,
		timeout: timeout,
		logger:  logger,
	}
}

// Store returns the underlying vector store.
func (e *Engine) Store() Store {
	return e.store
}

// Embed embeds text with the engine's embedder.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

// Search returns up to topK chunks ordered by ascending distance.
// It never fails: an empty or unreachable index, an embedding error and a
// timeout all yield an empty result, which callers treat as no information.
// Embedding and search run on the caller's goroutine under the timeout, so
// nothing is left running once Search returns.
func (e *Engine) Search(ctx context.Context, query string, topK int) []model.ScoredChunk {
	if topK <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	chunks, err := e.search(ctx, query, topK)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		e.logger.Warn("retrieval unavailable", slog.String("error", err.Error()))
		return nil
	}

	return normalizeResults(chunks, topK)
}

func (e *Engine) search(ctx context.Context, query string, topK int) (chunks []model.ScoredChunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			chunks, err = nil, fmt.Errorf("search panicked: %v", r)
		}
	}()

	embedding, err := e.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return e.store.Search(ctx, embedding, topK)
}

// normalizeResults drops empty entries, enforces ascending distance and topK,
// and renumbers Index to the final position.
func normalizeResults(chunks []model.ScoredChunk, topK int) []model.ScoredChunk {
	out := make([]model.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Chunk != nil {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	if len(out) > topK {
		out = out[:topK]
	}
	for i := range out {
		out[i].Index = i
		out[i].Priority = out[i].Distance
	}
	return out
}
