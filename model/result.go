package model

// ScoredChunk is a retrieved chunk with its scores for one request.
// Lower Distance and lower Priority mean more relevant.
type ScoredChunk struct {
	Chunk    *Chunk  `json:"chunk"`
	Distance float64 `json:"distance"`
	Priority float64 `json:"priority"`
	Index    int     `json:"index"` // position in the retrieval result
}

// QueryResult is the answer returned for a question.
// SourceURL is empty only when no relevant chunk exists.
type QueryResult struct {
	Answer       string `json:"answer"`
	SourceURL    string `json:"source_url"`
	UsedFallback bool   `json:"used_fallback"`
	SessionID    string `json:"session_id,omitempty"`
}

// HasSource reports whether the result is attributed to a chunk.
func (r QueryResult) HasSource() bool {
	return r.SourceURL != ""
}
