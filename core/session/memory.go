package session

import (
	"context"
	"sync"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

type memorySession struct {
	mu    sync.Mutex
	turns []model.ConversationTurn
}

// MemoryStore keeps histories in process memory. Each session has its own
// lock, so requests on different sessions never wait on each other.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	maxTurns int
}

// NewMemoryStore creates an empty store. maxTurns <= 0 uses MaxTurns.
func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = MaxTurns
	}
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		maxTurns: maxTurns,
	}
}

func (s *MemoryStore) session(id string, create bool) *memorySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok && create {
		sess = &memorySession{}
		s.sessions[id] = sess
	}
	return sess
}

func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	sess := s.session(sessionID, false)
	if sess == nil {
		return nil, nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]model.ConversationTurn, len(sess.turns))
	copy(out, sess.turns)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, turns ...model.ConversationTurn) error {
	sess := s.session(sessionID, true)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = append(sess.turns, turns...)
	if over := len(sess.turns) - s.maxTurns; over > 0 {
		kept := make([]model.ConversationTurn, s.maxTurns)
		copy(kept, sess.turns[over:])
		sess.turns = kept
	}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len returns the number of known sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
