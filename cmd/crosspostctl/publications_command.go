package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dbsqlc "github.com/memohai/crosspost/internal/db/sqlc"
	"github.com/memohai/crosspost/internal/publications"
)

func newPublicationsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publications",
		Short: "Maintain the publication ledger",
	}
	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest publications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if keep <= 0 {
				keep = cfg.Publications.MaxRecords
			}
			if keep <= 0 {
				keep = publications.DefaultMaxRecords
			}
			pool, err := ctx.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := publications.NewService(ctx.logger(), dbsqlc.New(pool), keep)
			removed, err := svc.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d publications, kept at most %d\n", removed, keep)
			return nil
		},
	}
	prune.Flags().IntVar(&keep, "keep", 0, "Entries to keep (default from config)")
	cmd.AddCommand(prune)
	return cmd
}
