package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

var (
	// ErrQuotaExceeded is returned when the completion service rejects a request for rate or quota reasons.
	ErrQuotaExceeded = errors.New("completion quota exceeded")
	// ErrEmptyCompletion is returned when the service answers with no text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrUnknownProvider is returned for provider names other than openai and ollama.
	ErrUnknownProvider = errors.New("unknown completion provider")
)

// Prompt is a single completion request.
type Prompt struct {
	System string
	User   string
}

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt Prompt) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}

// Options configures a completion client.
type Options struct {
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// New creates the completer for provider.
func New(provider string, opts Options) (Completer, error) {
	switch strings.ToLower(provider) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(opts), nil
	case ProviderOllama:
		client, err := NewOllamaClient(opts)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, helper.NewError("new completer", fmt.Errorf("%w: %s", ErrUnknownProvider, provider))
	}
}
