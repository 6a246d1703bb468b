package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studysphere/studysphere-server/internal/app"
	"github.com/studysphere/studysphere-server/internal/config"
	"github.com/studysphere/studysphere-server/internal/log"
)

func main() {
	var (
		configPath string
		overrides  config.Config
	)

	root := &cobra.Command{
		Use:          "studysphere-server",
		Short:        "StudySphere learning platform server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLog := log.New("info")

			cfg, path, err := config.Load(bootLog, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.UpdateFrom(overrides)

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting studysphere server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, &cfg, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("server exited: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to config file")
	root.Flags().StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	root.Flags().StringVar(&overrides.DatabasePath, "db", "", "SQLite database path")
	root.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	root.Flags().StringVar(&overrides.RedisAddr, "redis-addr", "", "Redis address for multi-process chat fan-out")
	root.Flags().StringVar(&overrides.AMQPURL, "amqp-url", "", "AMQP URL for email dispatch")

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
