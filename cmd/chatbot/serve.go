package main

import (
	"log/slog"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/server"
	"github.com/spf13/cobra"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var port int
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bot, err := openChatbot(ctx, *cfgPath, nil)
			if err != nil {
				return err
			}
			defer bot.Close()

			cfg := bot.Config
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cfg.KnowledgeBase.IngestOnStart {
				report, err := bot.IngestFile(ctx, cfg.KnowledgeBase.File, true)
				if err != nil {
					return err
				}
				bot.Logger().Info("knowledge base ingested", slog.Int("courses", report.Courses), slog.Int("chunks", report.Chunks))
			}

			return server.New(bot, cfg.Server, bot.Logger()).Run(ctx)
		},
	}
	serve.Flags().IntVarP(&port, "port", "p", 8000, "listen port (overrides server.port)")

	return serve
}
