package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/voyagen/tvcatalog/internal/models"
	"github.com/voyagen/tvcatalog/internal/store"
)

var epgCmd = &cobra.Command{
	Use:   "epg",
	Short: "Manage program reminders",
}

var epgListCmd = &cobra.Command{
	Use:   "list",
	Short: "Drop past reminders and list the rest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			if _, err := s.CleanEPGs(ctx, time.Now()); err != nil {
				return err
			}
			epgs, err := s.GetEPGs(ctx)
			if err != nil {
				return err
			}
			for _, e := range epgs {
				start := time.Unix(e.StartTimestamp, 0).Local().Format(time.DateTime)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", e.EPGID, start, e.ChannelName, e.Title)
			}
			return nil
		})
	},
}

var epgAddStart string

var epgAddCmd = &cobra.Command{
	Use:   "add <channel> <title>",
	Short: "Add a reminder for a program",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.ParseInLocation(time.DateTime, epgAddStart, time.Local)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			id, err := s.AddEPG(ctx, models.EPGNotify{
				ChannelName:    args[0],
				Title:          args[1],
				StartTimestamp: start.Unix(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var epgRemoveCmd = &cobra.Command{
	Use:   "remove <epg-id>",
	Short: "Remove a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			return s.RemoveEPG(ctx, args[0])
		})
	},
}

func init() {
	epgAddCmd.Flags().StringVar(&epgAddStart, "start", "", `program start, "2006-01-02 15:04:05" local time`)
	_ = epgAddCmd.MarkFlagRequired("start")
	epgCmd.AddCommand(epgListCmd, epgAddCmd, epgRemoveCmd)
}
