// Package service combines the fetcher and the store into the import flows.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voyagen/tvcatalog/internal/fetcher"
	"github.com/voyagen/tvcatalog/internal/models"
	"github.com/voyagen/tvcatalog/internal/store"
)

// ErrNoLocation is returned when a playlist source has no URL or path.
var ErrNoLocation = errors.New("source has no url")

// Result summarizes one import.
type Result struct {
	SourceID int64
	Parsed   int
	Inserted int
	Groups   int
}

// Import stores entries under src in a single transaction. An existing
// source with the same name is refreshed: its non-favorite channels are
// wiped first, then every entry is inserted, duplicates being skipped.
func Import(ctx context.Context, s store.Store, src models.Source, entries []fetcher.Entry) (Result, error) {
	res := Result{Parsed: len(entries)}
	err := s.DoTx(ctx, func(tx *store.Tx) error {
		id, err := tx.CreateOrFindSource(ctx, &src)
		if err != nil {
			return err
		}
		res.SourceID = id
		if err := tx.WipeSourceChannels(ctx, id); err != nil {
			return err
		}

		groups := store.NewGroupCache()
		for i := range entries {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("import cancelled: %w", err)
			}
			ch := &entries[i].Channel
			ch.SourceID = id
			if err := tx.SetChannelGroup(ctx, ch, id, groups); err != nil {
				return err
			}
			cid, inserted, err := tx.InsertChannel(ctx, ch)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}
			res.Inserted++
			if h := entries[i].Headers; !h.IsEmpty() {
				h.ChannelID = cid
				if err := tx.InsertChannelHeaders(ctx, h); err != nil {
					return err
				}
			}
		}
		res.Groups = groups.Len()
		return tx.UpdateSourceLastUpdated(ctx, id)
	})
	if err != nil {
		return Result{}, fmt.Errorf("import %q: %w", src.Name, err)
	}
	return res, nil
}

// Ingest loads the playlist of an M3U or M3U-link source and imports it.
// Local files are read for SourceTypeM3U, everything else is downloaded.
func Ingest(ctx context.Context, s store.Store, src models.Source, opts fetcher.Options) (Result, error) {
	if src.URL == nil || strings.TrimSpace(*src.URL) == "" {
		return Result{}, ErrNoLocation
	}
	if src.UseTvgID != nil {
		opts.UseTvgID = *src.UseTvgID
	}

	var (
		entries []fetcher.Entry
		err     error
	)
	if src.SourceType == models.SourceTypeM3U {
		entries, err = fetcher.ReadM3U(*src.URL, opts.UseTvgID)
	} else {
		entries, err = fetcher.FetchM3U(ctx, *src.URL, opts)
	}
	if err != nil {
		return Result{}, fmt.Errorf("fetch: %w", err)
	}
	return Import(ctx, s, src, entries)
}
