package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voyagen/tvcatalog/internal/fetcher"
	"github.com/voyagen/tvcatalog/internal/logging"
	"github.com/voyagen/tvcatalog/internal/models"
	"github.com/voyagen/tvcatalog/internal/service"
	"github.com/voyagen/tvcatalog/internal/store"
)

var (
	importName     string
	importUseTvgID bool
)

var importCmd = &cobra.Command{
	Use:   "import <url-or-file>",
	Short: "Import an M3U playlist, refreshing the source if it already exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location := args[0]
		src := models.Source{
			Name:       importName,
			SourceType: models.SourceTypeM3ULink,
			URL:        &location,
			Enabled:    true,
			UseTvgID:   &importUseTvgID,
		}
		if _, err := os.Stat(location); err == nil {
			src.SourceType = models.SourceTypeM3U
		}
		if src.Name == "" {
			src.Name = defaultSourceName(location)
		}

		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			res, err := service.Ingest(ctx, s, src, fetcher.Options{
				UserAgent: cfg.UserAgent,
				Timeout:   cfg.Timeout,
			})
			if err != nil {
				return err
			}
			log := logging.Component("import")
			log.Info().
				Int64("source_id", res.SourceID).
				Int("parsed", res.Parsed).
				Int("inserted", res.Inserted).
				Int("groups", res.Groups).
				Msg("playlist imported")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d channels imported\n", src.Name, res.Inserted)
			return nil
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <source-id>",
	Short: "Re-import an M3U source from its stored location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			src, err := s.GetSourceByID(ctx, id)
			if err != nil {
				return err
			}
			if src.SourceType != models.SourceTypeM3U && src.SourceType != models.SourceTypeM3ULink {
				return errors.New("only M3U sources can be refreshed")
			}
			res, err := service.Ingest(ctx, s, *src, fetcher.Options{
				UserAgent: cfg.UserAgent,
				Timeout:   cfg.Timeout,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d channels imported\n", src.Name, res.Inserted)
			return nil
		})
	},
}

// defaultSourceName derives a name from the last path element of location.
func defaultSourceName(location string) string {
	name := strings.TrimRight(location, "/")
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "m3u"
	}
	return name
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "source name (default: derived from the location)")
	importCmd.Flags().BoolVar(&importUseTvgID, "use-tvg-id", true, "name channels by tvg-id when tvg-name is missing")
	sourcesCmd.AddCommand(refreshCmd)
}
