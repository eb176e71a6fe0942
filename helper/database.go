package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection settings for PostgreSQL.
type DatabaseConfiguration struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"dbname"`
	Username string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Schema   string `mapstructure:"schema"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
}

// NewDatabaseConfiguration reads the configuration from CHATBOT_DATABASE_* environment
// variables, loading a .env file first if one exists.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("CHATBOT_DATABASE_HOST"),
		Port:     os.Getenv("CHATBOT_DATABASE_PORT"),
		Database: os.Getenv("CHATBOT_DATABASE_DBNAME"),
		Username: os.Getenv("CHATBOT_DATABASE_USER"),
		Password: os.Getenv("CHATBOT_DATABASE_PASSWORD"),
		Schema:   os.Getenv("CHATBOT_DATABASE_SCHEMA"),
		SSLMode:  os.Getenv("CHATBOT_DATABASE_SSLMODE"),
	}
	if v := os.Getenv("CHATBOT_DATABASE_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, NewError("parse max conns", err)
		}
		config.MaxConns = n
	}

	return config.Normalize(), config.Validate()
}

// Normalize fills in defaults for unset values.
func (c *DatabaseConfiguration) Normalize() *DatabaseConfiguration {
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.Schema == "" {
		c.Schema = "public"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 10
	}
	return c
}

// Validate checks that the required settings are present.
func (c *DatabaseConfiguration) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Username == "" {
		return fmt.Errorf("database user is required")
	}
	return nil
}

// DSN builds the lib/pq connection string.
func (c *DatabaseConfiguration) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	q.Set("search_path", c.Schema)
	u.RawQuery = q.Encode()
	return u.String()
}

// Database bundles a connection pool with its logger.
type Database struct {
	Name     string
	Logger   *slog.Logger
	Instance *sql.DB
}

// NewDatabase opens and pings a connection pool.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if config == nil {
		return nil, NewError("database configuration", fmt.Errorf("configuration is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	instance, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, NewError("open", err)
	}
	instance.SetMaxOpenConns(config.MaxConns)
	instance.SetMaxIdleConns(config.MaxConns / 2)
	instance.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := instance.PingContext(ctx); err != nil {
		_ = instance.Close()
		return nil, NewError("ping", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("database", config.Database))

	return &Database{
		Name:     name,
		Logger:   logger,
		Instance: instance,
	}, nil
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}
