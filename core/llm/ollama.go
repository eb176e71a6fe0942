package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
)

const (
	DefaultOllamaModel = "llama3.2"
	DefaultOllamaURL   = "http://localhost:11434"
)

// OllamaClient completes prompts with a local Ollama server.
type OllamaClient struct {
	client *api.Client
	opts   Options
}

// NewOllamaClient creates a client for opts.BaseURL, or the default local server.
func NewOllamaClient(opts Options) (*OllamaClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOllamaURL
	}
	if opts.Model == "" {
		opts.Model = DefaultOllamaModel
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, helper.NewError("parse ollama url", err)
	}
	return &OllamaClient{client: api.NewClient(base, http.DefaultClient), opts: opts}, nil
}

func (c *OllamaClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	var messages []api.Message
	if prompt.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: prompt.System})
	}
	messages = append(messages, api.Message{Role: "user", Content: prompt.User})

	stream := false
	options := map[string]interface{}{"temperature": c.opts.Temperature}
	if c.opts.MaxTokens > 0 {
		options["num_predict"] = c.opts.MaxTokens
	}
	req := &api.ChatRequest{
		Model:    c.opts.Model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	var content strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
			err = fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return "", helper.NewError("ollama chat", err)
	}

	out := strings.TrimSpace(content.String())
	if out == "" {
		return "", helper.NewError("ollama chat", ErrEmptyCompletion)
	}
	return out, nil
}
