package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voyagen/tvcatalog/internal/store"
)

var deleteConfirmed bool

var deleteDatabaseCmd = &cobra.Command{
	Use:   "delete-database",
	Short: "Delete the database file and every cached entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !deleteConfirmed {
			return errors.New("refusing to delete without --yes")
		}
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			if err := s.DeleteDatabase(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", cfg.DatabasePath())
			return nil
		})
	},
}

func init() {
	deleteDatabaseCmd.Flags().BoolVar(&deleteConfirmed, "yes", false, "confirm deletion")
}
