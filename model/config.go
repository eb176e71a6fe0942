package model

import "time"

const (
	MinTopK = 10
	MaxTopK = 15
)

// QueryConfig represents configuration for resolving a query
type QueryConfig struct {
	// Retrieval
	TopK          int           `json:"top_k"`
	SearchTimeout time.Duration `json:"search_timeout"`

	// Ranking
	TypeBoost float64 `json:"type_boost"` // subtracted from the distance of intent matching chunks

	// Synthesis
	ContextSize       int           `json:"context_size"`  // chunks passed to the completion service
	HistoryTurns      int           `json:"history_turns"` // recent turns included in the prompt
	CompletionTimeout time.Duration `json:"completion_timeout"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:              12,
		SearchTimeout:     5 * time.Second,
		TypeBoost:         2.0, // full cosine distance range
		ContextSize:       5,
		HistoryTurns:      6,
		CompletionTimeout: 20 * time.Second,
	}
}

// Normalize clamps TopK into [MinTopK, MaxTopK] and replaces unset values with defaults.
func (c QueryConfig) Normalize() QueryConfig {
	d := DefaultQueryConfig()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.TopK < MinTopK {
		c.TopK = MinTopK
	}
	if c.TopK > MaxTopK {
		c.TopK = MaxTopK
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = d.SearchTimeout
	}
	if c.TypeBoost < 0 {
		c.TypeBoost = d.TypeBoost
	}
	if c.ContextSize <= 0 {
		c.ContextSize = d.ContextSize
	}
	if c.HistoryTurns < 0 {
		c.HistoryTurns = d.HistoryTurns
	}
	if c.CompletionTimeout <= 0 {
		c.CompletionTimeout = d.CompletionTimeout
	}
	return c
}
