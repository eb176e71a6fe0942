package orchestrator

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/llm"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/ranking"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/session"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/synthesis"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	analystURL = "https://nextleap.app/course/data-analyst-course"
	pmURL      = "https://nextleap.app/course/product-management-course"
)

type fakeRetriever struct {
	results []model.ScoredChunk
	calls   int
}

func (f *fakeRetriever) Search(ctx context.Context, query string, topK int) []model.ScoredChunk {
	f.calls++
	return f.results
}

type failingSessions struct {
	session.Store
}

func (failingSessions) History(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	return nil, errors.New("redis down")
}

func (failingSessions) Append(ctx context.Context, sessionID string, turns ...model.ConversationTurn) error {
	return errors.New("redis down")
}

func knowledgeBase() []model.ScoredChunk {
	chunks := []*model.Chunk{
		{Type: model.ChunkTypeCohort, CohortName: "Product Management Fellowship", SourceURL: pmURL, Content: "Product Management Fellowship: become a PM"},
		{Type: model.ChunkTypeCohort, CohortName: "Data Analyst Fellowship", SourceURL: analystURL, Content: "Data Analyst Fellowship: learn SQL"},
		{Type: model.ChunkTypePayment, CohortName: "Product Management Fellowship", SourceURL: pmURL, Content: "EMI Options:\n- ₹4,999/month"},
		{Type: model.ChunkTypeBatch, CohortName: "Data Analyst Fellowship", SourceURL: analystURL, Content: "Cost: 40000", Metadata: model.Metadata{model.MetadataCost: "40000"}},
		{Type: model.ChunkTypePayment, CohortName: "Data Analyst Fellowship", SourceURL: analystURL, Content: "EMI Options:\n- ₹3,333/month for 12 months"},
	}
	out := make([]model.ScoredChunk, len(chunks))
	for i, c := range chunks {
		out[i] = model.ScoredChunk{Chunk: c, Distance: 0.2 + float64(i)*0.05, Index: i}
	}
	return out
}

func newOrchestrator(sessions session.Store, retriever Retriever, completer llm.Completer) *Orchestrator {
	config := model.DefaultQueryConfig()
	return NewOrchestrator(
		sessions,
		retriever,
		ranking.NewPrioritizer(nil, config.TypeBoost),
		synthesis.NewSynthesizer(completer, config),
		config,
		nil,
	)
}

func quota() llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, prompt llm.Prompt) (string, error) {
		return "", llm.ErrQuotaExceeded
	})
}

func TestHandleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("Cost question answers from the named course with one source", func(t *testing.T) {
		sessions := session.NewMemoryStore(session.MaxTurns)
		o := newOrchestrator(sessions, &fakeRetriever{results: knowledgeBase()}, quota())

		result := o.HandleQuery(ctx, "What is the cost of the data analyst course?", "s1")

		assert.True(t, result.UsedFallback)
		assert.Equal(t, analystURL, result.SourceURL)
		assert.Regexp(t, regexp.MustCompile(`₹[0-9,]+`), result.Answer, "Expected a currency figure")
		assert.Equal(t, "s1", result.SessionID)

		history, err := sessions.History(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, history, 2, "Expected user and assistant turn")
		assert.Equal(t, model.RoleUser, history[0].Role)
		assert.Equal(t, "Data Analyst", history[0].CourseMentioned)
		assert.Equal(t, model.RoleAssistant, history[1].Role)
		assert.Equal(t, "Data Analyst Fellowship", history[1].CourseMentioned)
	})

	t.Run("Follow-up stays on the previous course", func(t *testing.T) {
		sessions := session.NewMemoryStore(session.MaxTurns)
		o := newOrchestrator(sessions, &fakeRetriever{results: knowledgeBase()}, quota())

		o.HandleQuery(ctx, "Tell me about the data analyst course", "s2")
		result := o.HandleQuery(ctx, "Is there an EMI option?", "s2")

		assert.Equal(t, analystURL, result.SourceURL)
		assert.Contains(t, result.Answer, "₹3,333/month for 12 months")
	})

	t.Run("Naming another course switches topic", func(t *testing.T) {
		sessions := session.NewMemoryStore(session.MaxTurns)
		o := newOrchestrator(sessions, &fakeRetriever{results: knowledgeBase()}, quota())

		o.HandleQuery(ctx, "Tell me about the data analyst course", "s3")
		result := o.HandleQuery(ctx, "What about EMI for product management?", "s3")

		assert.Equal(t, pmURL, result.SourceURL)
		assert.Contains(t, result.Answer, "₹4,999/month")
	})

	t.Run("EMI and fee question lists the EMI options", func(t *testing.T) {
		o := newOrchestrator(session.NewMemoryStore(session.MaxTurns), &fakeRetriever{results: knowledgeBase()}, quota())

		result := o.HandleQuery(ctx, "What are the EMI options and the fee for data analyst?", "s8")

		assert.True(t, result.UsedFallback)
		assert.Equal(t, analystURL, result.SourceURL)
		assert.Contains(t, result.Answer, "EMI Options available", "Expected the payment chunk to lead despite the closer batch chunk")
		assert.Contains(t, result.Answer, "₹3,333/month for 12 months")
	})

	t.Run("Synthesized answer keeps a supplied source", func(t *testing.T) {
		c := llm.CompleterFunc(func(ctx context.Context, prompt llm.Prompt) (string, error) {
			return "It costs ₹40,000.\nSource: " + analystURL, nil
		})
		o := newOrchestrator(session.NewMemoryStore(session.MaxTurns), &fakeRetriever{results: knowledgeBase()}, c)

		result := o.HandleQuery(ctx, "data analyst cost", "")

		assert.False(t, result.UsedFallback)
		assert.Equal(t, "It costs ₹40,000.", result.Answer)
		assert.Equal(t, analystURL, result.SourceURL)
		assert.Equal(t, session.DefaultSessionID, result.SessionID)
	})

	t.Run("Empty retrieval returns no information without completing", func(t *testing.T) {
		called := false
		c := llm.CompleterFunc(func(ctx context.Context, prompt llm.Prompt) (string, error) {
			called = true
			return "", nil
		})
		o := newOrchestrator(session.NewMemoryStore(session.MaxTurns), &fakeRetriever{}, c)

		result := o.HandleQuery(ctx, "What is the cost?", "s4")

		assert.Equal(t, synthesis.NoInfoMessage, result.Answer)
		assert.Empty(t, result.SourceURL)
		assert.False(t, result.UsedFallback)
		assert.False(t, called, "Expected completion service not to be invoked")
	})

	t.Run("Malformed session id runs on a fresh session", func(t *testing.T) {
		sessions := session.NewMemoryStore(session.MaxTurns)
		o := newOrchestrator(sessions, &fakeRetriever{results: knowledgeBase()}, quota())

		result := o.HandleQuery(ctx, "data analyst cost", "not a valid id!")

		assert.NotEqual(t, "not a valid id!", result.SessionID)
		assert.True(t, session.ValidSessionID(result.SessionID))
		history, err := sessions.History(ctx, result.SessionID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("Session store failures do not fail the query", func(t *testing.T) {
		o := newOrchestrator(failingSessions{}, &fakeRetriever{results: knowledgeBase()}, quota())

		result := o.HandleQuery(ctx, "data analyst cost", "s5")

		assert.Equal(t, analystURL, result.SourceURL)
		assert.NotEmpty(t, result.Answer)
	})

	t.Run("Blank question does not search", func(t *testing.T) {
		retriever := &fakeRetriever{results: knowledgeBase()}
		o := newOrchestrator(session.NewMemoryStore(session.MaxTurns), retriever, quota())

		result := o.HandleQuery(ctx, "   ", "s6")

		assert.Equal(t, synthesis.NoInfoMessage, result.Answer)
		assert.Zero(t, retriever.calls)
	})

	t.Run("History stays bounded", func(t *testing.T) {
		sessions := session.NewMemoryStore(session.MaxTurns)
		o := newOrchestrator(sessions, &fakeRetriever{results: knowledgeBase()}, quota())

		for i := 0; i < 15; i++ {
			o.HandleQuery(ctx, "data analyst cost", "s7")
		}

		history, err := sessions.History(ctx, "s7")
		require.NoError(t, err)
		assert.Len(t, history, session.MaxTurns)
	})
}

func TestClearSession(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewMemoryStore(session.MaxTurns)
	o := newOrchestrator(sessions, &fakeRetriever{results: knowledgeBase()}, quota())

	o.HandleQuery(ctx, "data analyst cost", "")
	require.NoError(t, o.ClearSession(ctx, ""))

	history, err := sessions.History(ctx, session.DefaultSessionID)
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.ErrorIs(t, o.ClearSession(ctx, "bad id!"), session.ErrInvalidSessionID)
}
