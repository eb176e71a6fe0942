package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/tui"
	"github.com/spf13/cobra"
)

func chatCMD(cfgPath *string) *cobra.Command {
	var sessionID string

	var chat = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bot, err := openChatbot(ctx, *cfgPath, io.Discard)
			if err != nil {
				return err
			}
			defer bot.Close()

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			timeout := bot.Config.Retrieval.Timeout + bot.Config.LLM.Timeout
			m := tui.New(bot, sessionID, timeout)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	chat.Flags().StringVarP(&sessionID, "session", "s", "", "conversation id (default a new one)")

	return chat
}
