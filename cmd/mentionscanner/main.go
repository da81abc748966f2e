package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"MentionScanner/internal/app"
	"MentionScanner/internal/config"
	"MentionScanner/internal/logging"
)

func main() {
	var (
		configPath string
		every      time.Duration
	)

	root := &cobra.Command{
		Use:          "mentionscanner",
		Short:        "Scan content sources for keyword mentions and push a ranked digest",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(configPath)
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			if every > 0 {
				return application.RunEvery(cmd.Context(), every)
			}
			return application.Run(cmd.Context())
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration")
	root.Flags().DurationVar(&every, "every", 0, "repeat interval; 0 runs once and exits")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
