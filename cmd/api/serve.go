package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/di"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	injector := di.NewContainer(cfg)

	srv, err := di.Bootstrap(injector)
	if err != nil {
		_ = injector.Shutdown()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	select {
	case <-ctx.Done():
		log.Info("Stop signal received. Shutting down...")
	case err := <-serveErr:
		if err != nil {
			log.Error("Critical server error", zap.Error(err))
		}
	}

	// The container shuts services down in reverse dependency order.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}

	log.Info("Server stopped gracefully.")
	return nil
}
