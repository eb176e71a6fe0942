package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// MemoryStore is an in-process Store using brute-force cosine distance.
type MemoryStore struct {
	mu     sync.RWMutex
	dim    int
	nextID int
	chunks []*model.Chunk
}

// NewMemoryStore creates an empty store for embeddings of dimension dim.
func NewMemoryStore(dim int) *MemoryStore {
	return &MemoryStore{dim: dim, nextID: 1}
}

func (s *MemoryStore) Search(ctx context.Context, embedding []float32, topK int) ([]model.ScoredChunk, error) {
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dim, len(embedding))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]model.ScoredChunk, len(s.chunks))
	for i, chunk := range s.chunks {
		scored[i] = model.ScoredChunk{Chunk: chunk, Distance: CosineDistance(chunk.Embedding, embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})

	if topK < 0 {
		topK = 0
	}
	if topK < len(scored) {
		scored = scored[:topK]
	}
	for i := range scored {
		scored[i].Index = i
	}
	return scored, nil
}

func (s *MemoryStore) Insert(ctx context.Context, chunks []*model.Chunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dim {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dim, len(chunk.Embedding))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		stored := *chunk
		stored.ID = s.nextID
		s.nextID++
		if stored.RID == uuid.Nil {
			stored.RID = uuid.New()
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now()
		}
		chunk.ID, chunk.RID, chunk.CreatedAt = stored.ID, stored.RID, stored.CreatedAt
		s.chunks = append(s.chunks, &stored)
	}
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	return nil
}

// CosineDistance returns 1 - cosine similarity, in [0, 2].
// A zero vector is at distance 1 from everything.
func CosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
