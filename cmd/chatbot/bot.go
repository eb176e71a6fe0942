package main

import (
	"context"
	"io"
	"log/slog"

	chatbot "github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/config"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
)

// openChatbot loads the configuration at cfgPath and builds the chatbot.
// A non-nil out replaces the default stdout logger.
func openChatbot(ctx context.Context, cfgPath string, out io.Writer) (*chatbot.Chatbot, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	var opts []chatbot.Option
	if out != nil {
		level, _ := config.ParseLogLevel(cfg.General.LogLevel)
		logger := slog.New(helper.NewPrettyHandler(out, helper.PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: level},
		}))
		opts = append(opts, chatbot.WithLogger(logger))
	}
	return chatbot.NewChatbot(ctx, cfg, opts...)
}
