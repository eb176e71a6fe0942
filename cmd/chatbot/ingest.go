package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/database"
	"github.com/spf13/cobra"
)

func ingestCMD(cfgPath *string) *cobra.Command {
	var file string
	var reset bool
	var indexType string

	var ingest = &cobra.Command{
		Use:   "ingest",
		Short: "Build the knowledge base from a course JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bot, err := openChatbot(ctx, *cfgPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer bot.Close()

			if file == "" {
				file = bot.Config.KnowledgeBase.File
			}
			report, err := bot.IngestFile(ctx, file, reset)
			if err != nil {
				return err
			}

			if indexType != "" {
				if err := bot.ChangeIndexType(ctx, database.IndexOptions{Type: indexType}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d courses, %d chunks from %s\n", color.GreenString("Ingested"), report.Courses, report.Chunks, file)
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "  %s %s\n", color.YellowString("!"), issue)
			}
			return nil
		},
	}
	ingest.Flags().StringVarP(&file, "file", "f", "", "course JSON file (default knowledge_base.file)")
	ingest.Flags().BoolVar(&reset, "reset", false, "clear the index before ingesting")
	ingest.Flags().StringVar(&indexType, "index-type", "", "rebuild the postgres vector index as hnsw or ivfflat")

	return ingest
}
