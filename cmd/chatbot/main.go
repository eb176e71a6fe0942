package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := rootCMD()
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	var cfgPath string
	var root = &cobra.Command{
		Use:          "chatbot",
		Short:        "Nextleap course FAQ chatbot",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default searches ./config and .)")

	root.AddCommand(
		serveCMD(&cfgPath),
		ingestCMD(&cfgPath),
		askCMD(&cfgPath),
		chatCMD(&cfgPath),
	)
	return root
}
