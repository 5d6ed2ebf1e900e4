package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/voyagen/tvcatalog/internal/store"
)

var unfavorite bool

var favoriteCmd = &cobra.Command{
	Use:   "favorite <channel-id>",
	Short: "Mark a channel as favorite (kept across refreshes)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			return s.FavoriteChannel(ctx, id, !unfavorite)
		})
	},
}

func init() {
	favoriteCmd.Flags().BoolVar(&unfavorite, "remove", false, "clear the favorite flag instead")
}
