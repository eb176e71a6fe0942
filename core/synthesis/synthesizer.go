package synthesis

import (
	"context"
	"errors"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/llm"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/session"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

var (
	// ErrNoCompleter is the fallback cause when no completion service is configured.
	ErrNoCompleter = errors.New("no completion service configured")
	// ErrMalformedCompletion is the fallback cause when a completion has no answer text.
	ErrMalformedCompletion = errors.New("malformed completion")
)

// Kind tells which branch produced a Draft.
type Kind int

const (
	KindNoInfo Kind = iota
	KindSynthesized
	KindTemplated
)

func (k Kind) String() string {
	switch k {
	case KindSynthesized:
		return "synthesized"
	case KindTemplated:
		return "fallback"
	default:
		return "no_info"
	}
}

// Draft is the outcome of synthesis. Chunk is the chunk whose URL is cited
// and Cause is set when the templated branch replaced a completion.
type Draft struct {
	Kind      Kind
	Answer    string
	SourceURL string
	Chunk     *model.Chunk
	Cause     error
}

// Result converts the draft to the response contract.
func (d Draft) Result() model.QueryResult {
	if d.Kind == KindNoInfo {
		return model.QueryResult{Answer: NoInfoMessage}
	}
	return model.QueryResult{
		Answer:       d.Answer,
		SourceURL:    d.SourceURL,
		UsedFallback: d.Kind == KindTemplated,
	}
}

// Synthesizer turns prioritized chunks into an answer with exactly one source.
type Synthesizer struct {
	completer llm.Completer
	config    model.QueryConfig
}

// NewSynthesizer creates a synthesizer. completer may be nil, in which case
// every answer is templated.
func NewSynthesizer(completer llm.Completer, config model.QueryConfig) *Synthesizer {
	return &Synthesizer{completer: completer, config: config.Normalize()}
}

// Synthesize answers question from chunks, which must already be prioritized.
// It never returns an error: completion failures select the templated branch.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, intents model.IntentSet, chunks []model.ScoredChunk, history []model.ConversationTurn) Draft {
	window := s.Window(chunks)
	if len(window) == 0 {
		return Draft{Kind: KindNoInfo}
	}
	top := window[0].Chunk

	if s.completer == nil {
		return templated(intents, top, ErrNoCompleter)
	}

	prompt := BuildPrompt(question, window, session.Recent(history, s.config.HistoryTurns))

	completionCtx, cancel := context.WithTimeout(ctx, s.config.CompletionTimeout)
	defer cancel()

	text, err := s.completer.Complete(completionCtx, prompt)
	if err != nil {
		return templated(intents, top, helper.NewError("complete", err))
	}

	answer, url, _ := ParseSource(text)
	if answer == "" {
		return templated(intents, top, ErrMalformedCompletion)
	}

	cited := top
	for _, c := range window {
		if c.Chunk.SourceURL == url {
			cited = c.Chunk
			break
		}
	}
	return Draft{Kind: KindSynthesized, Answer: answer, SourceURL: cited.SourceURL, Chunk: cited}
}

// Window returns the chunks passed to the completion service: the first
// ContextSize non-empty chunks, always including the top one.
func (s *Synthesizer) Window(chunks []model.ScoredChunk) []model.ScoredChunk {
	window := make([]model.ScoredChunk, 0, s.config.ContextSize)
	for _, c := range chunks {
		if c.Chunk == nil {
			continue
		}
		window = append(window, c)
		if len(window) == s.config.ContextSize {
			break
		}
	}
	return window
}

func templated(intents model.IntentSet, chunk *model.Chunk, cause error) Draft {
	answer := Templated(intents, chunk)
	if answer == "" {
		return Draft{Kind: KindNoInfo, Cause: cause}
	}
	return Draft{Kind: KindTemplated, Answer: answer, SourceURL: chunk.SourceURL, Chunk: chunk, Cause: cause}
}
