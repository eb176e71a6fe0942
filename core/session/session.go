package session

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

const (
	// MaxTurns bounds the history of one session. Older turns are evicted first.
	MaxTurns = 20

	DefaultSessionID = "default"
)

var ErrInvalidSessionID = errors.New("invalid session id")

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// Store holds bounded per-session conversation histories.
// Implementations must be safe for concurrent use across distinct session ids.
type Store interface {
	// History returns the turns of a session, oldest first. Unknown sessions have no turns.
	History(ctx context.Context, sessionID string) ([]model.ConversationTurn, error)
	// Append adds turns in order, creating the session when needed, and keeps the newest MaxTurns.
	Append(ctx context.Context, sessionID string, turns ...model.ConversationTurn) error
	// Clear forgets a session.
	Clear(ctx context.Context, sessionID string) error
}

// ValidSessionID reports whether id is 1 to 128 characters of letters, digits, '.', '_', ':' or '-'.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// ResolveID maps a requested id to the id to use. An empty id becomes the
// default session. A malformed id is replaced by a fresh random one and
// ErrInvalidSessionID is returned alongside it.
func ResolveID(id string) (string, error) {
	if id == "" {
		return DefaultSessionID, nil
	}
	if !ValidSessionID(id) {
		return uuid.NewString(), ErrInvalidSessionID
	}
	return id, nil
}

// LastCourse returns the most recent non-empty course mentioned in turns, or "".
func LastCourse(turns []model.ConversationTurn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].CourseMentioned != "" {
			return turns[i].CourseMentioned
		}
	}
	return ""
}

// Recent returns the last n turns. n <= 0 returns nil.
func Recent(turns []model.ConversationTurn, n int) []model.ConversationTurn {
	if n <= 0 {
		return nil
	}
	if len(turns) > n {
		return turns[len(turns)-n:]
	}
	return turns
}
