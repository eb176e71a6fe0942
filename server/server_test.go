package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/config"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/session"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	result    model.QueryResult
	chunks    int
	chunksErr error
	clearErr  error

	questions []string
	sessions  []string
	cleared   []string
}

func (f *fakeService) HandleQuery(ctx context.Context, question string, sessionID string) model.QueryResult {
	f.questions = append(f.questions, question)
	f.sessions = append(f.sessions, sessionID)
	result := f.result
	if result.SessionID == "" {
		result.SessionID = sessionID
		if result.SessionID == "" {
			result.SessionID = session.DefaultSessionID
		}
	}
	return result
}

func (f *fakeService) ClearSession(ctx context.Context, sessionID string) error {
	f.cleared = append(f.cleared, sessionID)
	return f.clearErr
}

func (f *fakeService) KnowledgeBaseChunks(ctx context.Context) (int, error) {
	return f.chunks, f.chunksErr
}

func newTestServer(service Service) *Server {
	return New(service, config.ServerConfig{Host: "127.0.0.1", Port: 0}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestQuery(t *testing.T) {
	t.Run("Post query returns answer with source", func(t *testing.T) {
		service := &fakeService{result: model.QueryResult{
			Answer:    "The cost is ₹40,000",
			SourceURL: "https://nextleap.app/course/data-analyst-course",
		}}
		s := newTestServer(service)

		rec := do(t, s, http.MethodPost, "/query", `{"question":"What is the fee?","session_id":"abc"}`)
		require.Equal(t, http.StatusOK, rec.Code, "Expected status 200")

		var resp QueryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "Expected JSON response")
		assert.Equal(t, "The cost is ₹40,000", resp.Answer, "Expected answer from service")
		require.NotNil(t, resp.SourceURL, "Expected source url")
		assert.Equal(t, "https://nextleap.app/course/data-analyst-course", *resp.SourceURL, "Expected source url from service")
		assert.Equal(t, "abc", resp.SessionID, "Expected session id to be passed through")
		assert.Equal(t, []string{"What is the fee?"}, service.questions, "Expected question forwarded")
	})

	t.Run("Missing source is null", func(t *testing.T) {
		service := &fakeService{result: model.QueryResult{Answer: "I couldn't find"}}
		s := newTestServer(service)

		rec := do(t, s, http.MethodPost, "/query", `{"question":"Do you teach cooking?"}`)
		require.Equal(t, http.StatusOK, rec.Code, "Expected status 200")
		assert.Contains(t, rec.Body.String(), `"source_url":null`, "Expected null source url")
		assert.Contains(t, rec.Body.String(), `"session_id":"default"`, "Expected default session id")
	})

	t.Run("Empty question is rejected", func(t *testing.T) {
		service := &fakeService{}
		s := newTestServer(service)

		rec := do(t, s, http.MethodPost, "/query", `{"question":"   "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "Expected status 400")
		assert.Contains(t, rec.Body.String(), `"error"`, "Expected JSON error body")
		assert.Empty(t, service.questions, "Expected service not to be called")
	})

	t.Run("Malformed body is rejected", func(t *testing.T) {
		s := newTestServer(&fakeService{})

		rec := do(t, s, http.MethodPost, "/query", `{"question":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "Expected status 400")
	})

	t.Run("Get query reads parameters", func(t *testing.T) {
		service := &fakeService{result: model.QueryResult{Answer: "answer", SourceURL: "https://x", UsedFallback: true}}
		s := newTestServer(service)

		rec := do(t, s, http.MethodGet, "/query?question=emi+options&session_id=s1", "")
		require.Equal(t, http.StatusOK, rec.Code, "Expected status 200")

		var resp QueryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "Expected JSON response")
		assert.True(t, resp.UsedFallback, "Expected fallback flag")
		assert.Equal(t, []string{"emi options"}, service.questions, "Expected decoded question")
		assert.Equal(t, []string{"s1"}, service.sessions, "Expected session id parameter")
	})

	t.Run("Get query without question is rejected", func(t *testing.T) {
		s := newTestServer(&fakeService{})

		rec := do(t, s, http.MethodGet, "/query", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "Expected status 400")
	})
}

func TestHealth(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		s := newTestServer(&fakeService{chunks: 42})

		rec := do(t, s, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code, "Expected status 200")

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "Expected JSON response")
		assert.Equal(t, "healthy", resp.Status, "Expected healthy status")
		assert.Equal(t, 42, resp.KnowledgeBaseChunks, "Expected chunk count")
	})

	t.Run("Count failure reports error with status 200", func(t *testing.T) {
		s := newTestServer(&fakeService{chunksErr: errors.New("connection refused")})

		rec := do(t, s, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code, "Expected status 200")

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "Expected JSON response")
		assert.Equal(t, "error", resp.Status, "Expected error status")
		assert.Contains(t, resp.Message, "connection refused", "Expected error message")
		assert.Zero(t, resp.KnowledgeBaseChunks, "Expected zero chunks")
	})
}

func TestClearSession(t *testing.T) {
	t.Run("Clears", func(t *testing.T) {
		service := &fakeService{}
		s := newTestServer(service)

		rec := do(t, s, http.MethodDelete, "/session/abc", "")
		assert.Equal(t, http.StatusNoContent, rec.Code, "Expected status 204")
		assert.Equal(t, []string{"abc"}, service.cleared, "Expected session to be cleared")
	})

	t.Run("Invalid id", func(t *testing.T) {
		service := &fakeService{clearErr: helper.NewError("resolve session id", session.ErrInvalidSessionID)}
		s := newTestServer(service)

		rec := do(t, s, http.MethodDelete, "/session/bad%20id", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "Expected status 400")
	})

	t.Run("Store failure", func(t *testing.T) {
		s := newTestServer(&fakeService{clearErr: errors.New("redis down")})

		rec := do(t, s, http.MethodDelete, "/session/abc", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, "Expected status 500")
		assert.Contains(t, rec.Body.String(), "redis down", "Expected error in body")
	})
}

func TestMetrics(t *testing.T) {
	t.Run("Outcome", func(t *testing.T) {
		assert.Equal(t, OutcomeNoInfo, Outcome(model.QueryResult{Answer: "none"}), "Expected no_info without source")
		assert.Equal(t, OutcomeFallback, Outcome(model.QueryResult{SourceURL: "u", UsedFallback: true}), "Expected fallback")
		assert.Equal(t, OutcomeSynthesized, Outcome(model.QueryResult{SourceURL: "u"}), "Expected synthesized")
	})

	t.Run("Queries are counted", func(t *testing.T) {
		service := &fakeService{result: model.QueryResult{Answer: "a", SourceURL: "u", UsedFallback: true}}
		s := newTestServer(service)

		do(t, s, http.MethodGet, "/query?question=fee", "")
		do(t, s, http.MethodGet, "/query?question=emi", "")

		assert.Equal(t, 2.0, testutil.ToFloat64(s.Metrics().queries.WithLabelValues(OutcomeFallback)), "Expected two fallback answers")
		assert.Equal(t, 0.0, testutil.ToFloat64(s.Metrics().queries.WithLabelValues(OutcomeSynthesized)), "Expected no synthesized answers")
	})

	t.Run("Endpoint exposes counters", func(t *testing.T) {
		s := newTestServer(&fakeService{result: model.QueryResult{Answer: "a"}})
		do(t, s, http.MethodGet, "/query?question=hi", "")

		rec := do(t, s, http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, rec.Code, "Expected status 200")
		assert.Contains(t, rec.Body.String(), `chatbot_queries_total{outcome="no_info"} 1`, "Expected no_info counter")
		assert.Contains(t, rec.Body.String(), "chatbot_query_duration_seconds_count 1", "Expected duration histogram")
	})
}

func TestRun(t *testing.T) {
	s := newTestServer(&fakeService{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "Expected graceful shutdown")
	case <-time.After(5 * time.Second):
		t.Fatal("Expected server to stop after cancel")
	}
}
