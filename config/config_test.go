package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/llm"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/pipeline"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
general:
  log_level: debug
retrieval:
  backend: memory
  top_k: 10
  timeout: 2s
embedding:
  provider: hashing
  dim: 64
llm:
  provider: none
session:
  backend: redis
  ttl: 24h
redis:
  addr: redis:6379
synthesis:
  context_size: 3
courses:
  - name: Growth Marketing
    aliases: ["growth", "marketing"]
`

func TestLoad(t *testing.T) {
	t.Run("Defaults without a config file", func(t *testing.T) {
		config, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "info", config.General.LogLevel)
		assert.Equal(t, 8000, config.Server.Port)
		assert.Equal(t, retrieval.BackendPostgres, config.Retrieval.Backend)
		assert.Equal(t, 12, config.Retrieval.TopK)
		assert.Equal(t, 5*time.Second, config.Retrieval.Timeout)
		assert.Equal(t, EmbeddingHugot, config.Embedding.Provider)
		assert.Equal(t, pipeline.DefaultEmbeddingModel, config.Embedding.Model)
		assert.Equal(t, pipeline.DefaultEmbeddingDim, config.Embedding.Dim)
		assert.Equal(t, llm.ProviderOpenAI, config.LLM.Provider)
		assert.Equal(t, SessionMemory, config.Session.Backend)
		assert.Equal(t, 20, config.Session.MaxTurns)
		assert.Equal(t, 2.0, config.Ranking.TypeBoost)
		assert.Len(t, config.Courses, 4, "Expected the default course catalog")
	})

	t.Run("Environment overrides defaults", func(t *testing.T) {
		t.Setenv("CHATBOT_RETRIEVAL_BACKEND", "memory")
		t.Setenv("CHATBOT_RETRIEVAL_TOP_K", "14")
		t.Setenv("CHATBOT_EMBEDDING_PROVIDER", "ollama")
		t.Setenv("CHATBOT_LLM_PROVIDER", "ollama")
		t.Setenv("CHATBOT_LLM_TIMEOUT", "3s")
		t.Setenv("CHATBOT_LLM_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "sk-test")

		config, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, retrieval.BackendMemory, config.Retrieval.Backend)
		assert.Equal(t, 14, config.Retrieval.TopK)
		assert.Equal(t, "nomic-embed-text", config.Embedding.Model, "Expected provider specific model default")
		assert.Equal(t, 768, config.Embedding.Dim)
		assert.Equal(t, llm.ProviderOllama, config.LLM.Provider)
		assert.Equal(t, 3*time.Second, config.LLM.Timeout)
		assert.Equal(t, "sk-test", config.LLM.APIKey, "Expected API key from OPENAI_API_KEY")
	})

	t.Run("Reads a config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chatbot.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0600))

		config, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", config.General.LogLevel)
		assert.Equal(t, 10, config.Retrieval.TopK)
		assert.Equal(t, 2*time.Second, config.Retrieval.Timeout)
		assert.Equal(t, EmbeddingHashing, config.Embedding.Provider)
		assert.Equal(t, 64, config.Embedding.Dim)
		assert.Equal(t, LLMNone, config.LLM.Provider)
		assert.Equal(t, SessionRedis, config.Session.Backend)
		assert.Equal(t, 24*time.Hour, config.Session.TTL)
		assert.Equal(t, "redis:6379", config.Redis.Addr)
		assert.Equal(t, 3, config.Synthesis.ContextSize)
		assert.Equal(t, 6, config.Synthesis.HistoryTurns, "Expected unset values to keep defaults")
		require.Len(t, config.Courses, 1)
		assert.Equal(t, "Growth Marketing", config.Courses[0].Name)
		assert.Equal(t, []string{"growth", "marketing"}, config.Courses[0].Aliases)
	})

	t.Run("Missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid values are rejected", func(t *testing.T) {
		t.Setenv("CHATBOT_RETRIEVAL_BACKEND", "pinecone")

		_, err := Load("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, retrieval.ErrUnknownBackend), "Expected ErrUnknownBackend, got %v", err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return Default().Normalize()
	}

	t.Run("Defaults are valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"TopK below range", func(c *Config) { c.Retrieval.TopK = 5 }},
		{"TopK above range", func(c *Config) { c.Retrieval.TopK = 16 }},
		{"Unknown embedding provider", func(c *Config) { c.Embedding.Provider = "word2vec" }},
		{"Negative dim", func(c *Config) { c.Embedding.Dim = -1 }},
		{"Unknown llm provider", func(c *Config) { c.LLM.Provider = "anthropic" }},
		{"Unknown session backend", func(c *Config) { c.Session.Backend = "file" }},
		{"Redis without addr", func(c *Config) { c.Session.Backend = SessionRedis; c.Redis.Addr = "" }},
		{"Qdrant without addr", func(c *Config) { c.Retrieval.Backend = retrieval.BackendQdrant; c.Qdrant.Addr = "" }},
		{"Postgres without host", func(c *Config) { c.Database.Host = "" }},
		{"Negative boost", func(c *Config) { c.Ranking.TypeBoost = -1 }},
		{"Bad log level", func(c *Config) { c.General.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}

	t.Run("Memory backend needs no database", func(t *testing.T) {
		c := valid()
		c.Retrieval.Backend = retrieval.BackendMemory
		c.Database.Host = ""
		assert.NoError(t, c.Validate())
	})
}

func TestQueryConfig(t *testing.T) {
	c := Default().Normalize()
	c.Retrieval.TopK = 15
	c.Ranking.TypeBoost = 1.5
	c.Synthesis.ContextSize = 4
	c.LLM.Timeout = 7 * time.Second

	q := c.QueryConfig()

	assert.Equal(t, 15, q.TopK)
	assert.Equal(t, 1.5, q.TypeBoost)
	assert.Equal(t, 4, q.ContextSize)
	assert.Equal(t, 7*time.Second, q.CompletionTimeout)
	assert.Equal(t, c.Retrieval.Timeout, q.SearchTimeout)
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestServerAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8000", Default().Server.Addr())
}
