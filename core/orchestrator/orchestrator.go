package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/intent"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/llm"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/ranking"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/session"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/synthesis"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// Retriever returns candidate chunks for a question, most similar first.
// It reports failures as an empty result.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) []model.ScoredChunk
}

// Orchestrator resolves questions against the knowledge base and records
// the conversation.
type Orchestrator struct {
	sessions    session.Store
	retriever   Retriever
	prioritizer *ranking.Prioritizer
	synthesizer *synthesis.Synthesizer
	config      model.QueryConfig
	logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator. A nil logger uses slog.Default().
func NewOrchestrator(sessions session.Store, retriever Retriever, prioritizer *ranking.Prioritizer, synthesizer *synthesis.Synthesizer, config model.QueryConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		sessions:    sessions,
		retriever:   retriever,
		prioritizer: prioritizer,
		synthesizer: synthesizer,
		config:      config.Normalize(),
		logger:      logger,
	}
}

// HandleQuery answers question within the conversation sessionID. It always
// returns a valid result. Retrying a call records its turns again.
func (o *Orchestrator) HandleQuery(ctx context.Context, question string, sessionID string) model.QueryResult {
	start := time.Now()
	question = strings.TrimSpace(question)

	id, err := session.ResolveID(sessionID)
	if err != nil {
		o.logger.Warn("malformed session id, starting a new session", slog.String("requested", sessionID), slog.String("session_id", id))
	}

	if question == "" {
		result := synthesis.Draft{Kind: synthesis.KindNoInfo}.Result()
		result.SessionID = id
		return result
	}

	history, err := o.sessions.History(ctx, id)
	if err != nil {
		o.logger.Warn("session history unavailable", slog.String("session_id", id), slog.String("error", err.Error()))
		history = nil
	}
	lastCourse := session.LastCourse(history)

	candidates := o.retriever.Search(ctx, question, o.config.TopK)
	intents := intent.Classify(question)
	ranked := o.prioritizer.Prioritize(candidates, intents, question, lastCourse)
	draft := o.synthesizer.Synthesize(ctx, question, intents, ranked, history)

	if draft.Cause != nil {
		o.logger.Warn("answer fallback", slog.String("session_id", id), slog.String("outcome", draft.Kind.String()), slog.String("cause", draft.Cause.Error()), slog.Bool("quota", errors.Is(draft.Cause, llm.ErrQuotaExceeded)))
	}

	answerCourse := ""
	if draft.Chunk != nil {
		answerCourse = draft.Chunk.CohortName
	}
	result := draft.Result()
	turns := []model.ConversationTurn{
		model.NewUserTurn(question, o.prioritizer.Catalog().Match(question)),
		model.NewAssistantTurn(result.Answer, answerCourse),
	}
	if err := o.sessions.Append(ctx, id, turns...); err != nil {
		o.logger.Error("failed to record conversation", slog.String("session_id", id), slog.String("error", err.Error()))
	}

	o.logger.Debug("query handled",
		slog.String("session_id", id),
		slog.String("intents", intents.String()),
		slog.String("last_course", lastCourse),
		slog.Int("candidates", len(candidates)),
		slog.String("outcome", draft.Kind.String()),
		slog.String("source_url", result.SourceURL),
		slog.Duration("took", time.Since(start)),
	)

	result.SessionID = id
	return result
}

// ClearSession forgets the conversation sessionID. An empty id clears the default session.
func (o *Orchestrator) ClearSession(ctx context.Context, sessionID string) error {
	id, err := session.ResolveID(sessionID)
	if err != nil {
		return helper.NewError("resolve session id", err)
	}
	return o.sessions.Clear(ctx, id)
}
