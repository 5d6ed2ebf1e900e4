package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voyagen/tvcatalog/internal/models"
	"github.com/voyagen/tvcatalog/internal/store"
)

var (
	searchPage       int
	searchMedia      []string
	searchSourceIDs  []int64
	searchView       string
	searchGroupID    int64
	searchSeriesID   int64
	searchJSONOutput bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Browse channels or categories one page at a time",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := models.Filters{Page: searchPage}
		if len(args) == 1 {
			f.Query = &args[0]
		}
		var err error
		if f.MediaTypes, err = parseMediaTypes(searchMedia); err != nil {
			return err
		}
		if f.ViewType, err = parseViewType(searchView); err != nil {
			return err
		}
		if cmd.Flags().Changed("group") {
			f.GroupID = &searchGroupID
		}
		if cmd.Flags().Changed("series") {
			f.SeriesID = &searchSeriesID
		}

		return withStore(cmd, func(ctx context.Context, s store.Store) error {
			f.SourceIDs = searchSourceIDs
			if !cmd.Flags().Changed("source") {
				enabled, err := s.GetEnabledSources(ctx)
				if err != nil {
					return err
				}
				for _, src := range enabled {
					f.SourceIDs = append(f.SourceIDs, src.ID)
				}
			}
			rows, err := s.Search(ctx, f)
			if err != nil {
				return err
			}
			if searchJSONOutput {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			for _, ch := range rows {
				url := ""
				if ch.URL != nil {
					url = *ch.URL
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", ch.ID, mediaTypeName(ch.MediaType), ch.Name, url)
			}
			return nil
		})
	},
}

var mediaTypeNames = map[string]models.MediaType{
	"live":   models.MediaTypeLivestream,
	"movie":  models.MediaTypeMovie,
	"series": models.MediaTypeSerie,
}

func parseMediaTypes(names []string) ([]models.MediaType, error) {
	out := make([]models.MediaType, 0, len(names))
	for _, n := range names {
		mt, ok := mediaTypeNames[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("unknown media type %q", n)
		}
		out = append(out, mt)
	}
	return out, nil
}

func mediaTypeName(mt models.MediaType) string {
	if mt == models.MediaTypeGroup {
		return "group"
	}
	for name, v := range mediaTypeNames {
		if v == mt {
			return name
		}
	}
	return "unknown"
}

func parseViewType(name string) (models.ViewType, error) {
	switch strings.ToLower(name) {
	case "", "all":
		return models.ViewTypeAll, nil
	case "favorites":
		return models.ViewTypeFavorites, nil
	case "categories":
		return models.ViewTypeCategories, nil
	}
	return 0, fmt.Errorf("unknown view %q", name)
}

func init() {
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "1-based page number")
	searchCmd.Flags().StringSliceVar(&searchMedia, "media", []string{"live", "movie", "series"}, "media types (live, movie, series)")
	searchCmd.Flags().Int64SliceVar(&searchSourceIDs, "source", nil, "source ids (default: all enabled sources)")
	searchCmd.Flags().StringVar(&searchView, "view", "all", "view (all, favorites, categories)")
	searchCmd.Flags().Int64Var(&searchGroupID, "group", 0, "only channels of this group")
	searchCmd.Flags().Int64Var(&searchSeriesID, "series", 0, "only episodes of this series")
	searchCmd.Flags().BoolVar(&searchJSONOutput, "json", false, "print JSON")
}
