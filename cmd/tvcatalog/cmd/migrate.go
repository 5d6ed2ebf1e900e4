package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voyagen/tvcatalog/internal/logging"
	"github.com/voyagen/tvcatalog/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database if needed and apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		db, err := store.Open(ctx, cfg.DatabasePath(), store.PoolOptions{
			Size:           cfg.PoolSize,
			AcquireTimeout: cfg.AcquireTimeout,
			Logger:         logging.Component("store"),
		})
		if err != nil {
			return err
		}
		defer db.Close()
		return printVersion(ctx, cmd, db)
	},
}

func printVersion(ctx context.Context, cmd *cobra.Command, db *store.SQLite) error {
	version, err := store.SchemaVersion(ctx, db.Pool())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", db.Pool().Path(), version)
	return nil
}
