// Package main implements the 10xcards command. It runs the HTTP API server
// by default and also carries the database migrations, a model listing for
// the configured AI provider and a command line client that creates a set
// through a running server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ketaiwk/10xcards/internal/config"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand that reads the configuration.
type globalFlags struct {
	configDir string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "10xcards",
		Short:        "10xCards flashcard API server",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags, false)
		},
	}
	root.PersistentFlags().StringVar(&flags.configDir, "config", "",
		"directory containing config.yaml (defaults to the working directory)")

	root.AddCommand(
		newServeCmd(flags),
		newMigrateCmd(flags),
		newModelsCmd(flags),
		newCreateSetCmd(),
		newHashPasswordCmd(flags),
	)
	return root
}

// initializeApp loads the configuration and sets up structured logging.
func initializeApp(flags *globalFlags) (*config.Config, *slog.Logger, error) {
	var opts []config.Option
	if flags.configDir != "" {
		opts = append(opts, config.WithConfigPaths(flags.configDir))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("auth_provider", cfg.Auth.Provider),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.Bool("redis_denylist", cfg.Redis.Addr != ""),
		slog.Bool("tracing", cfg.Tracing.Enabled))

	return cfg, l, nil
}
