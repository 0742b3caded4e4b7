package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/storage"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/workers"
)

func newPurgeCmd(opts *rootOptions) *cobra.Command {
	var retention time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Hard-delete lists soft-deleted longer than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withBackend(cmd.Context(), func(cfg *config.Config, b *storage.Backend, log *zap.Logger) error {
				if b.Purger == nil {
					return errors.New("purge: storage kind " + b.Kind + " deletes lists immediately")
				}
				if !cmd.Flags().Changed("retention") {
					retention = cfg.Purge.Retention
				}

				n, err := workers.NewPurgeWorker(b.Purger, cfg.Purge.Interval, retention, log).RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d lists\n", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&retention, "retention", 0, "override PURGE_RETENTION")
	return cmd
}
