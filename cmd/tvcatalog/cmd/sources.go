package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/voyagen/tvcatalog/internal/store"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List and manage sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sources with their channel counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			sources, err := s.GetSources(ctx)
			if err != nil {
				return err
			}
			for _, src := range sources {
				n, err := s.GetChannelCountBySource(ctx, src.ID)
				if err != nil {
					return err
				}
				updated := "never"
				if src.LastUpdated != nil {
					updated = src.LastUpdated.Local().Format(time.DateTime)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tenabled=%t\tchannels=%d\tupdated=%s\n",
					src.ID, src.Name, src.Enabled, n, updated)
			}
			return nil
		})
	},
}

func setEnabledCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <source-id>",
		Short: use + " a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, func(ctx context.Context, s store.Store) error {
				return s.SetSourceEnabled(ctx, id, enabled)
			})
		},
	}
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete <source-id>",
	Short: "Delete a source with its channels and groups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			return s.DeleteSource(ctx, id)
		})
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func init() {
	sourcesCmd.AddCommand(
		sourcesListCmd,
		setEnabledCmd("enable", true),
		setEnabledCmd("disable", false),
		sourcesDeleteCmd,
	)
}
