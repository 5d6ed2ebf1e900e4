package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voyagen/tvcatalog/internal/store"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change stored settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print all settings, or one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			settings, err := s.GetSettings(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				v, ok := settings[args[0]]
				if !ok {
					return fmt.Errorf("setting %q: %w", args[0], store.ErrNotFound)
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, settings[k])
			}
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Merge values into the stored settings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make(map[string]string, len(args))
		for _, a := range args {
			k, v, ok := strings.Cut(a, "=")
			if !ok || k == "" {
				return fmt.Errorf("expected key=value, got %q", a)
			}
			values[k] = v
		}
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			return s.UpdateSettings(ctx, values)
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}
