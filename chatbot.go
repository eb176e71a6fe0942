package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/ollama/ollama/api"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/config"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/llm"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/orchestrator"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/pipeline"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/ranking"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/retrieval"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/session"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/synthesis"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/database"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
	loadSql "github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/sql"
)

// Chatbot answers course questions from the knowledge base and keeps the
// conversation of every session.
type Chatbot struct {
	DB           *helper.Database          // postgres backend only
	Courses      *database.CoursesDBHandler // postgres backend only
	Chunks       *database.ChunksDBHandler  // postgres backend only
	Store        retrieval.Store
	Sessions     session.Store
	Pipeline     *pipeline.Pipeline
	Engine       *retrieval.Engine
	Orchestrator *orchestrator.Orchestrator
	Config       *config.Config
	// Logging
	log     *slog.Logger
	closers []func() error
}

// Option replaces a component that NewChatbot would otherwise build from the configuration.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	embedder     pipeline.EmbedFunc
	store        retrieval.Store
	sessions     session.Store
	completer    llm.Completer
	completerSet bool
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithEmbedder(embedder pipeline.EmbedFunc) Option {
	return func(o *options) { o.embedder = embedder }
}

func WithStore(store retrieval.Store) Option {
	return func(o *options) { o.store = store }
}

func WithSessionStore(sessions session.Store) Option {
	return func(o *options) { o.sessions = sessions }
}

// WithCompleter sets the completion service. A nil completer templates every answer.
func WithCompleter(completer llm.Completer) Option {
	return func(o *options) {
		o.completer = completer
		o.completerSet = true
	}
}

// NewChatbot creates a chatbot with every component built from cfg.
func NewChatbot(ctx context.Context, cfg *config.Config, opts ...Option) (*Chatbot, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, helper.NewError("validate config", err)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		level, _ := config.ParseLogLevel(cfg.General.LogLevel)
		logger = slog.New(helper.NewPrettyHandler(os.Stdout, helper.PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: level},
		}))
	}

	c := &Chatbot{Config: cfg, log: logger}

	embedder := o.embedder
	if embedder == nil {
		var err error
		embedder, err = newEmbedder(cfg.Embedding)
		if err != nil {
			return nil, helper.NewError("create embedder", err)
		}
	}
	c.Pipeline = pipeline.NewPipeline(pipeline.CourseChunker(), embedder)

	c.Store = o.store
	if c.Store == nil {
		if err := c.openStore(ctx); err != nil {
			c.Close()
			return nil, helper.NewError("open vector store", err)
		}
	}

	c.Sessions = o.sessions
	if c.Sessions == nil {
		if err := c.openSessions(ctx); err != nil {
			c.Close()
			return nil, helper.NewError("open session store", err)
		}
	}

	completer := o.completer
	if !o.completerSet && cfg.LLM.Provider != config.LLMNone {
		var err error
		completer, err = llm.New(cfg.LLM.Provider, cfg.LLM.Options())
		if err != nil {
			c.Close()
			return nil, helper.NewError("create completer", err)
		}
	}

	query := cfg.QueryConfig()
	c.Engine = retrieval.NewEngine(c.Store, embedder, query.SearchTimeout, logger)
	c.Orchestrator = orchestrator.NewOrchestrator(
		c.Sessions,
		c.Engine,
		ranking.NewPrioritizer(ranking.NewCourseCatalog(cfg.Courses), query.TypeBoost),
		synthesis.NewSynthesizer(completer, query),
		query,
		logger,
	)

	logger.Info("Chatbot ready",
		slog.String("retrieval", cfg.Retrieval.Backend),
		slog.String("embedding", cfg.Embedding.Provider),
		slog.String("llm", cfg.LLM.Provider),
		slog.String("sessions", cfg.Session.Backend),
	)

	return c, nil
}

func newEmbedder(cfg config.EmbeddingConfig) (pipeline.EmbedFunc, error) {
	switch cfg.Provider {
	case config.EmbeddingHugot:
		return pipeline.DefaultEmbedder(cfg.ModelDir)
	case config.EmbeddingOllama:
		base, err := url.Parse(cfg.OllamaURL)
		if err != nil {
			return nil, helper.NewError("parse ollama url", err)
		}
		client := api.NewClient(base, http.DefaultClient)
		return pipeline.OllamaEmbedder(client, pipeline.OllamaEmbedderOptions{
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
		}), nil
	case config.EmbeddingHashing:
		return pipeline.HashingEmbedder(cfg.Dim), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

func (c *Chatbot) openStore(ctx context.Context) error {
	dim := c.Config.Embedding.Dim

	switch c.Config.Retrieval.Backend {
	case retrieval.BackendPostgres:
		db, err := helper.NewDatabase("chatbot", &c.Config.Database, c.log)
		if err != nil {
			return helper.NewError("connect database", err)
		}
		c.DB = db
		c.closers = append(c.closers, db.Close)

		if err := loadSql.Init(db.Instance); err != nil {
			return helper.NewError("initialize database extensions", err)
		}

		// Courses first, chunks reference them.
		c.Courses, err = database.NewCoursesDBHandler(db, false)
		if err != nil {
			return helper.NewError("create courses handler", err)
		}
		c.Chunks, err = database.NewChunksDBHandler(db, dim, false)
		if err != nil {
			return helper.NewError("create chunks handler", err)
		}
		c.Store = retrieval.NewPostgresStore(c.Chunks)

	case retrieval.BackendQdrant:
		store, err := retrieval.NewQdrantStore(ctx, c.Config.Qdrant.Addr, c.Config.Qdrant.Collection, dim)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, store.Close)
		c.Store = store

	case retrieval.BackendMemory:
		c.Store = retrieval.NewMemoryStore(dim)

	default:
		return fmt.Errorf("%w: %s", retrieval.ErrUnknownBackend, c.Config.Retrieval.Backend)
	}
	return nil
}

func (c *Chatbot) openSessions(ctx context.Context) error {
	switch c.Config.Session.Backend {
	case config.SessionRedis:
		r := c.Config.Redis
		client, err := session.Connect(ctx, r.Addr, r.Password, r.DB, r.Timeout)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, client.Close)
		c.Sessions = session.NewRedisStore(client, session.RedisOptions{
			Prefix:   r.Prefix,
			MaxTurns: c.Config.Session.MaxTurns,
			TTL:      c.Config.Session.TTL,
		})
	default:
		c.Sessions = session.NewMemoryStore(c.Config.Session.MaxTurns)
	}
	return nil
}

// Logger returns the logger the chatbot was built with.
func (c *Chatbot) Logger() *slog.Logger {
	return c.log
}

// Close releases database, Qdrant and Redis connections.
func (c *Chatbot) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// HandleQuery answers question in the conversation sessionID. It never fails;
// problems degrade the answer instead.
func (c *Chatbot) HandleQuery(ctx context.Context, question string, sessionID string) model.QueryResult {
	return c.Orchestrator.HandleQuery(ctx, question, sessionID)
}

// ClearSession forgets a conversation.
func (c *Chatbot) ClearSession(ctx context.Context, sessionID string) error {
	return c.Orchestrator.ClearSession(ctx, sessionID)
}

// KnowledgeBaseChunks returns the number of chunks in the vector store.
func (c *Chatbot) KnowledgeBaseChunks(ctx context.Context) (int, error) {
	count, err := c.Store.Count(ctx)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}
	return count, nil
}

// ChangeIndexType rebuilds the vector index. Only the postgres backend has one to change.
func (c *Chatbot) ChangeIndexType(ctx context.Context, opts database.IndexOptions) error {
	if c.Chunks == nil {
		return helper.NewError("change index type", fmt.Errorf("backend %s has no configurable index", c.Config.Retrieval.Backend))
	}
	return c.Chunks.ChangeIndexType(ctx, opts)
}
