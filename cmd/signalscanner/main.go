package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"SignalScanner/internal/app"
	"SignalScanner/internal/config"
	"SignalScanner/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "signalscanner",
		Short:         "Scan science feeds and rank noteworthy stories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	scan := &cobra.Command{
		Use:   "scan",
		Short: "Run one discovery pass and print the ranked shortlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				logging.New("info").Error("startup failed", "error", err)
				return err
			}
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error("startup failed", "error", err)
				return err
			}

			if err := application.Run(cmd.Context()); err != nil {
				logger.Error("run failed", "error", err)
				return err
			}
			return nil
		},
	}
	scan.Flags().StringVar(&configPath, "config", "", "path to YAML configuration")

	root.AddCommand(scan)
	return root
}
