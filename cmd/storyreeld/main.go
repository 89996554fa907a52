package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/daemon"
	"storyreel/internal/jobs"
	"storyreel/internal/logging"
	"storyreel/internal/render"
	"storyreel/internal/services/shotstack"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "storyreeld",
		Short:         "Track render jobs and serve the job API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, nil)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	return cmd
}

// run blocks until ctx is cancelled. ready, when set, receives the daemon once it has started.
func run(ctx context.Context, configPath string, ready func(*daemon.Daemon)) error {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return err
	}

	client := shotstack.NewFromConfig(cfg, shotstack.WithLogger(logger))
	manager := render.NewManager(cfg, store, client, logger)

	d, err := daemon.New(cfg, store, manager, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer closeDaemon(d, logger)

	if err := d.Start(ctx); err != nil {
		return err
	}
	if ready != nil {
		ready(d)
	}

	<-ctx.Done()
	logger.Info("storyreeld shutting down")
	return nil
}

func closeDaemon(d *daemon.Daemon, logger *slog.Logger) {
	if err := d.Close(); err != nil {
		logger.Warn("daemon close", logging.Error(err))
	}
}
