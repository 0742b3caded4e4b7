package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/storage"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL schema for the postgres and sqlite backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := openSQL(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if db == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "storage kind %q has no schema, nothing to do\n", cfg.Storage.Kind)
				return nil
			}
			defer db.Close()

			if err := storage.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("Schema applied", zap.String("kind", cfg.Storage.Kind))
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

// openSQL returns nil for the document kinds.
func openSQL(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.Storage.Kind {
	case config.StoragePostgres:
		return storage.OpenPostgres(ctx, cfg.DB)
	case config.StorageSQLite:
		return storage.OpenSQLite(ctx, cfg.Storage.DataDir)
	default:
		return nil, nil
	}
}
