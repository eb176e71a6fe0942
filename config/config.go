package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/llm"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/pipeline"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/ranking"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/retrieval"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
	"github.com/spf13/viper"
)

const EnvPrefix = "CHATBOT"

// Embedding providers.
const (
	EmbeddingHugot   = "hugot"
	EmbeddingOllama  = "ollama"
	EmbeddingHashing = "hashing"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

var defaultEmbeddingModels = map[string]string{
	EmbeddingHugot:  pipeline.DefaultEmbeddingModel,
	EmbeddingOllama: "nomic-embed-text",
}

var defaultEmbeddingDims = map[string]int{
	EmbeddingHugot:   pipeline.DefaultEmbeddingDim,
	EmbeddingOllama:  768,
	EmbeddingHashing: pipeline.DefaultEmbeddingDim,
}

// LLMNone disables the completion service. Every answer is then templated.
const LLMNone = "none"

// Config holds all configuration of the chatbot.
type Config struct {
	General       GeneralConfig                `mapstructure:"general"`
	Server        ServerConfig                 `mapstructure:"server"`
	Retrieval     RetrievalConfig              `mapstructure:"retrieval"`
	Embedding     EmbeddingConfig              `mapstructure:"embedding"`
	Database      helper.DatabaseConfiguration `mapstructure:"database"`
	Qdrant        QdrantConfig                 `mapstructure:"qdrant"`
	LLM           LLMConfig                    `mapstructure:"llm"`
	Session       SessionConfig                `mapstructure:"session"`
	Redis         RedisConfig                  `mapstructure:"redis"`
	Synthesis     SynthesisConfig              `mapstructure:"synthesis"`
	Ranking       RankingConfig                `mapstructure:"ranking"`
	Courses       []ranking.Course             `mapstructure:"courses"`
	KnowledgeBase KnowledgeBaseConfig          `mapstructure:"knowledge_base"`
}

type GeneralConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for the HTTP listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RetrievalConfig struct {
	Backend string        `mapstructure:"backend"` // postgres, qdrant or memory
	TopK    int           `mapstructure:"top_k"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // hugot, ollama or hashing
	Model      string `mapstructure:"model"`
	ModelDir   string `mapstructure:"model_dir"`
	Dim        int    `mapstructure:"dim"`
	OllamaURL  string `mapstructure:"ollama_url"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type QdrantConfig struct {
	Addr       string `mapstructure:"addr"`
	Collection string `mapstructure:"collection"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai, ollama or none
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Options returns the client options for the completion service.
func (c LLMConfig) Options() llm.Options {
	return llm.Options{
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}

type SessionConfig struct {
	Backend  string        `mapstructure:"backend"` // memory or redis
	MaxTurns int           `mapstructure:"max_turns"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type SynthesisConfig struct {
	ContextSize  int `mapstructure:"context_size"`
	HistoryTurns int `mapstructure:"history_turns"`
}

type RankingConfig struct {
	TypeBoost float64 `mapstructure:"type_boost"`
}

type KnowledgeBaseConfig struct {
	File          string `mapstructure:"file"`
	IngestOnStart bool   `mapstructure:"ingest_on_start"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	query := model.DefaultQueryConfig()
	return &Config{
		General: GeneralConfig{LogLevel: "info"},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Retrieval: RetrievalConfig{
			Backend: retrieval.BackendPostgres,
			TopK:    query.TopK,
			Timeout: query.SearchTimeout,
		},
		Embedding: EmbeddingConfig{
			Provider:   EmbeddingHugot,
			ModelDir:   "./models",
			OllamaURL:  llm.DefaultOllamaURL,
			MaxRetries: 3,
		},
		Database: helper.DatabaseConfiguration{
			Host:     "localhost",
			Port:     "5432",
			Database: "chatbot",
			Username: "postgres",
			Schema:   "public",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		Qdrant: QdrantConfig{
			Addr:       "localhost:6334",
			Collection: "nextleap_courses",
		},
		LLM: LLMConfig{
			Provider: llm.ProviderOpenAI,
			Timeout:  query.CompletionTimeout,
		},
		Session: SessionConfig{
			Backend:  SessionMemory,
			MaxTurns: 20,
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Prefix:  "chatbot:session",
			Timeout: 5 * time.Second,
		},
		Synthesis: SynthesisConfig{
			ContextSize:  query.ContextSize,
			HistoryTurns: query.HistoryTurns,
		},
		Ranking:       RankingConfig{TypeBoost: query.TypeBoost},
		Courses:       ranking.DefaultCourses(),
		KnowledgeBase: KnowledgeBaseConfig{File: "data/processed/courses.json"},
	}
}

// Load reads the configuration. Values come from, in increasing precedence,
// the defaults, the config file, a .env file and CHATBOT_* environment
// variables. An empty path searches for config.{yaml,json} in ./config and the
// working directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, helper.NewError("read config", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, helper.NewError("unmarshal config", err)
	}
	overrideFromEnv(config)

	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("validate config", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("general.log_level", d.General.LogLevel)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("retrieval.backend", d.Retrieval.Backend)
	v.SetDefault("retrieval.top_k", d.Retrieval.TopK)
	v.SetDefault("retrieval.timeout", d.Retrieval.Timeout)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.model_dir", d.Embedding.ModelDir)
	v.SetDefault("embedding.dim", d.Embedding.Dim)
	v.SetDefault("embedding.ollama_url", d.Embedding.OllamaURL)
	v.SetDefault("embedding.max_retries", d.Embedding.MaxRetries)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.dbname", d.Database.Database)
	v.SetDefault("database.user", d.Database.Username)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.schema", d.Database.Schema)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.max_conns", d.Database.MaxConns)

	v.SetDefault("qdrant.addr", d.Qdrant.Addr)
	v.SetDefault("qdrant.collection", d.Qdrant.Collection)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.timeout", d.LLM.Timeout)

	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.max_turns", d.Session.MaxTurns)
	v.SetDefault("session.ttl", d.Session.TTL)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.prefix", d.Redis.Prefix)
	v.SetDefault("redis.timeout", d.Redis.Timeout)

	v.SetDefault("synthesis.context_size", d.Synthesis.ContextSize)
	v.SetDefault("synthesis.history_turns", d.Synthesis.HistoryTurns)

	v.SetDefault("ranking.type_boost", d.Ranking.TypeBoost)

	v.SetDefault("knowledge_base.file", d.KnowledgeBase.File)
	v.SetDefault("knowledge_base.ingest_on_start", d.KnowledgeBase.IngestOnStart)
}

// overrideFromEnv fills the API key from the provider's usual variables.
func overrideFromEnv(c *Config) {
	if c.LLM.APIKey != "" {
		return
	}
	for _, key := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			c.LLM.APIKey = v
			return
		}
	}
}

// Normalize replaces unset values with defaults.
func (c *Config) Normalize() *Config {
	d := Default()

	if c.General.LogLevel == "" {
		c.General.LogLevel = d.General.LogLevel
	}
	if c.Server.Port <= 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}

	c.Retrieval.Backend = strings.ToLower(c.Retrieval.Backend)
	if c.Retrieval.Backend == "" {
		c.Retrieval.Backend = d.Retrieval.Backend
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = d.Retrieval.TopK
	}
	if c.Retrieval.Timeout <= 0 {
		c.Retrieval.Timeout = d.Retrieval.Timeout
	}

	c.Embedding.Provider = strings.ToLower(c.Embedding.Provider)
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = d.Embedding.Provider
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = defaultEmbeddingModels[c.Embedding.Provider]
	}
	if c.Embedding.Dim == 0 {
		c.Embedding.Dim = defaultEmbeddingDims[c.Embedding.Provider]
	}
	if c.Embedding.OllamaURL == "" {
		c.Embedding.OllamaURL = d.Embedding.OllamaURL
	}
	if c.Embedding.MaxRetries <= 0 {
		c.Embedding.MaxRetries = d.Embedding.MaxRetries
	}

	c.Database.Normalize()

	if c.Qdrant.Collection == "" {
		c.Qdrant.Collection = d.Qdrant.Collection
	}

	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	if c.LLM.Provider == "" {
		c.LLM.Provider = d.LLM.Provider
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = d.LLM.Timeout
	}

	c.Session.Backend = strings.ToLower(c.Session.Backend)
	if c.Session.Backend == "" {
		c.Session.Backend = d.Session.Backend
	}
	if c.Session.MaxTurns <= 0 {
		c.Session.MaxTurns = d.Session.MaxTurns
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = d.Redis.Prefix
	}
	if c.Redis.Timeout <= 0 {
		c.Redis.Timeout = d.Redis.Timeout
	}

	if c.Synthesis.ContextSize <= 0 {
		c.Synthesis.ContextSize = d.Synthesis.ContextSize
	}
	if c.Synthesis.HistoryTurns < 0 {
		c.Synthesis.HistoryTurns = d.Synthesis.HistoryTurns
	}
	if len(c.Courses) == 0 {
		c.Courses = d.Courses
	}
	return c
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	var errs []error

	if _, err := ParseLogLevel(c.General.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch c.Retrieval.Backend {
	case retrieval.BackendPostgres:
		if err := c.Database.Validate(); err != nil {
			errs = append(errs, err)
		}
	case retrieval.BackendQdrant:
		if c.Qdrant.Addr == "" {
			errs = append(errs, fmt.Errorf("qdrant addr is required for the qdrant backend"))
		}
	case retrieval.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: %s", retrieval.ErrUnknownBackend, c.Retrieval.Backend))
	}
	if c.Retrieval.TopK < model.MinTopK || c.Retrieval.TopK > model.MaxTopK {
		errs = append(errs, fmt.Errorf("retrieval top_k must be between %d and %d, got %d", model.MinTopK, model.MaxTopK, c.Retrieval.TopK))
	}

	switch c.Embedding.Provider {
	case EmbeddingHugot, EmbeddingHashing, EmbeddingOllama:
	default:
		errs = append(errs, fmt.Errorf("unknown embedding provider: %s", c.Embedding.Provider))
	}
	if c.Embedding.Dim <= 0 {
		errs = append(errs, fmt.Errorf("embedding dim must be positive, got %d", c.Embedding.Dim))
	}

	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderOllama, LLMNone:
	default:
		errs = append(errs, fmt.Errorf("%w: %s", llm.ErrUnknownProvider, c.LLM.Provider))
	}

	switch c.Session.Backend {
	case SessionMemory:
	case SessionRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("redis addr is required for the redis session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend: %s", c.Session.Backend))
	}

	if c.Ranking.TypeBoost < 0 {
		errs = append(errs, fmt.Errorf("ranking type_boost must not be negative"))
	}
	for _, course := range c.Courses {
		if strings.TrimSpace(course.Name) == "" {
			errs = append(errs, fmt.Errorf("course name must not be empty"))
		}
	}

	return errors.Join(errs...)
}

// QueryConfig returns the per-query settings.
func (c *Config) QueryConfig() model.QueryConfig {
	return model.QueryConfig{
		TopK:              c.Retrieval.TopK,
		SearchTimeout:     c.Retrieval.Timeout,
		TypeBoost:         c.Ranking.TypeBoost,
		ContextSize:       c.Synthesis.ContextSize,
		HistoryTurns:      c.Synthesis.HistoryTurns,
		CompletionTimeout: c.LLM.Timeout,
	}.Normalize()
}

// ParseLogLevel maps debug, info, warn and error to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
	return l, nil
}
