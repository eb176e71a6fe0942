package helper

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabaseName = "chatbot_test"
	testDatabaseUser = "chatbot"
	testDatabasePass = "chatbot"
)

// MustStartPostgresContainer starts a pgvector enabled PostgreSQL container
// and returns its teardown function and mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg17",
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername(testDatabaseUser),
		postgres.WithPassword(testDatabasePass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", fmt.Errorf("failed to get mapped port: %w", err)
	}

	return container.Terminate, port.Port(), nil
}

// MustStartRedisContainer starts a Redis container and returns its teardown
// function and address.
func MustStartRedisContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return nil, "", fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return container.Terminate, "", fmt.Errorf("failed to get host: %w", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		return container.Terminate, "", fmt.Errorf("failed to get mapped port: %w", err)
	}

	return container.Terminate, fmt.Sprintf("%s:%s", host, port.Port()), nil
}

// SetTestDatabaseConfigEnvs points the database environment at the test container.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("CHATBOT_DATABASE_HOST", "localhost")
	t.Setenv("CHATBOT_DATABASE_PORT", port)
	t.Setenv("CHATBOT_DATABASE_DBNAME", testDatabaseName)
	t.Setenv("CHATBOT_DATABASE_USER", testDatabaseUser)
	t.Setenv("CHATBOT_DATABASE_PASSWORD", testDatabasePass)
	t.Setenv("CHATBOT_DATABASE_SCHEMA", "public")
	t.Setenv("CHATBOT_DATABASE_SSLMODE", "disable")
}

// NewTestDatabase connects to the test container and panics on failure.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := slog.New(NewPrettyHandler(os.Stdout, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn},
	}))

	db, err := NewDatabase("test", config, logger)
	if err != nil {
		log.Panicf("error connecting to test database: %v", err)
	}
	return db
}
