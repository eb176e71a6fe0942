package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func askCMD(cfgPath *string) *cobra.Command {
	var sessionID string

	var ask = &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bot, err := openChatbot(ctx, *cfgPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer bot.Close()

			result := bot.HandleQuery(ctx, strings.Join(args, " "), sessionID)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Answer)
			if result.HasSource() {
				fmt.Fprintf(out, "\n%s %s\n", color.New(color.Faint).Sprint("Source:"), color.CyanString(result.SourceURL))
			}
			if result.UsedFallback {
				fmt.Fprintln(out, color.YellowString("(answered from course data)"))
			}
			return nil
		},
	}
	ask.Flags().StringVarP(&sessionID, "session", "s", "", "conversation id (default \"default\")")

	return ask
}
