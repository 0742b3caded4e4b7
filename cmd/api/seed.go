package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/storage"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/services"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the default grocery catalog; existing names are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withBackend(cmd.Context(), func(_ *config.Config, b *storage.Backend, log *zap.Logger) error {
				added, err := services.NewItemService(b.Items, log).SeedCatalog(cmd.Context(), services.DefaultCatalog)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d of %d catalog items\n", added, len(services.DefaultCatalog))
				return nil
			})
		},
	}
}
