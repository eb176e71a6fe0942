package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseConfiguration(t *testing.T) {
	t.Run("Normalize fills defaults", func(t *testing.T) {
		config := (&DatabaseConfiguration{Host: "db", Database: "faq", Username: "bot"}).Normalize()

		assert.Equal(t, "5432", config.Port, "Expected default port")
		assert.Equal(t, "public", config.Schema, "Expected default schema")
		assert.Equal(t, "disable", config.SSLMode, "Expected default sslmode")
		assert.Equal(t, 10, config.MaxConns, "Expected default max conns")
	})

	t.Run("Validate requires host, name and user", func(t *testing.T) {
		assert.Error(t, (&DatabaseConfiguration{Database: "faq", Username: "bot"}).Validate(), "Expected missing host to fail")
		assert.Error(t, (&DatabaseConfiguration{Host: "db", Username: "bot"}).Validate(), "Expected missing database to fail")
		assert.Error(t, (&DatabaseConfiguration{Host: "db", Database: "faq"}).Validate(), "Expected missing user to fail")
		assert.NoError(t, (&DatabaseConfiguration{Host: "db", Database: "faq", Username: "bot"}).Validate())
	})

	t.Run("DSN escapes credentials", func(t *testing.T) {
		config := (&DatabaseConfiguration{Host: "db", Database: "faq", Username: "bot", Password: "p@ss word"}).Normalize()

		dsn := config.DSN()
		assert.Contains(t, dsn, "postgres://bot:p%40ss%20word@db:5432/faq", "Expected escaped credentials")
		assert.Contains(t, dsn, "sslmode=disable", "Expected sslmode parameter")
	})

	t.Run("NewDatabaseConfiguration reads environment", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "6543")

		config, err := NewDatabaseConfiguration()
		require.NoError(t, err, "Expected configuration from environment")
		assert.Equal(t, "localhost", config.Host)
		assert.Equal(t, "6543", config.Port)
		assert.Equal(t, testDatabaseName, config.Database)
	})
}
