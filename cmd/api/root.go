package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/storage"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/logger"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "superlist",
		Short:         "SuperList shopping list server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "optional YAML config file")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	cmd.AddCommand(newPurgeCmd(opts))
	return cmd
}

// load reads the configuration and builds the logger every command needs.
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withBackend opens the configured storage for a one-shot command.
func (o *rootOptions) withBackend(ctx context.Context, fn func(*config.Config, *storage.Backend, *zap.Logger) error) error {
	cfg, log, err := o.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("Failed to close storage", zap.Error(err))
		}
	}()

	return fn(cfg, backend, log)
}
