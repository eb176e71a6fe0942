package model

import "time"

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one append-only entry of a session history.
type ConversationTurn struct {
	Role            Role      `json:"role"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	CourseMentioned string    `json:"course_mentioned,omitempty"`
}

// NewUserTurn creates a user turn stamped with the current time.
func NewUserTurn(text string, course string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Text: text, Timestamp: time.Now(), CourseMentioned: course}
}

// NewAssistantTurn creates an assistant turn stamped with the current time.
func NewAssistantTurn(text string, course string) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant, Text: text, Timestamp: time.Now(), CourseMentioned: course}
}
