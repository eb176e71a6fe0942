package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/config"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/session"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// Service is the chatbot as seen by the HTTP surface.
type Service interface {
	HandleQuery(ctx context.Context, question string, sessionID string) model.QueryResult
	ClearSession(ctx context.Context, sessionID string) error
	KnowledgeBaseChunks(ctx context.Context) (int, error)
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question  string `json:"question" query:"question"`
	SessionID string `json:"session_id" query:"session_id"`
}

// QueryResponse is returned by both /query routes. SourceURL is null when
// no relevant course information was found.
type QueryResponse struct {
	Answer       string  `json:"answer"`
	SourceURL    *string `json:"source_url"`
	UsedFallback bool    `json:"used_fallback"`
	SessionID    string  `json:"session_id"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status              string `json:"status"`
	Message             string `json:"message"`
	KnowledgeBaseChunks int    `json:"knowledge_base_chunks"`
}

// Server serves the chatbot over HTTP.
type Server struct {
	echo    *echo.Echo
	service Service
	metrics *Metrics
	config  config.ServerConfig
	log     *slog.Logger
}

// New creates a server for service. A nil logger uses slog.Default().
func New(service Service, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		echo:    echo.New(),
		service: service,
		metrics: NewMetrics(),
		config:  cfg,
		log:     logger,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	e.GET("/health", s.health)
	e.POST("/query", s.postQuery)
	e.GET("/query", s.getQuery)
	e.DELETE("/session/:id", s.clearSession)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Metrics returns the collectors updated by the query routes.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run listens on the configured address until ctx is cancelled and then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Addr()
	s.echo.Server.ReadTimeout = s.config.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", slog.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return helper.NewError("listen", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down http server")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return helper.NewError("shutdown", err)
	}
	return nil
}

func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	req := c.Request()
	s.log.Warn("http error",
		slog.Int("code", code),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("remote", c.RealIP()),
		slog.String("error", err.Error()),
	)
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]interface{}{"error": msg})
	}
}

func (s *Server) health(c echo.Context) error {
	count, err := s.service.KnowledgeBaseChunks(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "error",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:              "healthy",
		Message:             "Nextleap FAQ Chatbot API is running",
		KnowledgeBaseChunks: count,
	})
}

func (s *Server) postQuery(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return s.answer(c, req)
}

func (s *Server) getQuery(c echo.Context) error {
	req := QueryRequest{
		Question:  c.QueryParam("question"),
		SessionID: c.QueryParam("session_id"),
	}
	return s.answer(c, req)
}

func (s *Server) answer(c echo.Context, req QueryRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question must not be empty")
	}

	start := time.Now()
	result := s.service.HandleQuery(c.Request().Context(), req.Question, req.SessionID)
	s.metrics.Observe(result, time.Since(start))

	resp := QueryResponse{
		Answer:       result.Answer,
		UsedFallback: result.UsedFallback,
		SessionID:    result.SessionID,
	}
	if result.HasSource() {
		url := result.SourceURL
		resp.SourceURL = &url
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) clearSession(c echo.Context) error {
	err := s.service.ClearSession(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, session.ErrInvalidSessionID):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	case err != nil:
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
