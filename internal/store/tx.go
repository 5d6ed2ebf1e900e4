package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/voyagen/tvcatalog/internal/models"
)

// Tx exposes the write operations that run inside one transaction opened
// by DoTx. It must not be used after the callback returns.
type Tx struct {
	tx *sql.Tx
}

// CreateOrFindSource returns the id of the source named src.Name, inserting it if needed.
func (t *Tx) CreateOrFindSource(ctx context.Context, src *models.Source) (int64, error) {
	id, err := createOrFindSource(ctx, t.tx, src)
	if err != nil {
		return 0, fmt.Errorf("CreateOrFindSource: %w", err)
	}
	return id, nil
}

// InsertChannel inserts ch; an existing (name, url, source) is skipped and
// reported with inserted=false.
func (t *Tx) InsertChannel(ctx context.Context, ch *models.Channel) (id int64, inserted bool, err error) {
	id, inserted, err = insertChannel(ctx, t.tx, ch)
	if err != nil {
		return 0, false, fmt.Errorf("InsertChannel: %w", err)
	}
	return id, inserted, nil
}

// SetChannelGroup resolves ch.Group to a group id of sourceID through cache,
// creating the group the first time its name is seen, and stores it in ch.GroupID.
func (t *Tx) SetChannelGroup(ctx context.Context, ch *models.Channel, sourceID int64, cache *GroupCache) error {
	if err := setChannelGroup(ctx, t.tx, ch, sourceID, cache); err != nil {
		return fmt.Errorf("SetChannelGroup: %w", err)
	}
	return nil
}

// InsertChannelHeaders stores headers for h.ChannelID. Empty headers are not stored.
func (t *Tx) InsertChannelHeaders(ctx context.Context, h *models.ChannelHttpHeaders) error {
	if err := insertChannelHeaders(ctx, t.tx, h); err != nil {
		return fmt.Errorf("InsertChannelHeaders: %w", err)
	}
	return nil
}

// AddCustomChannel inserts a user-defined channel and its headers.
func (t *Tx) AddCustomChannel(ctx context.Context, cc models.CustomChannel) (int64, error) {
	id, err := addCustomChannel(ctx, t.tx, cc)
	if err != nil {
		return 0, fmt.Errorf("AddCustomChannel: %w", err)
	}
	return id, nil
}

// AddCustomGroup inserts a group and returns its id.
func (t *Tx) AddCustomGroup(ctx context.Context, g models.Group) (int64, error) {
	id, err := addCustomGroup(ctx, t.tx, g)
	if err != nil {
		return 0, fmt.Errorf("AddCustomGroup: %w", err)
	}
	return id, nil
}

// WipeSourceChannels removes non-favorite channels and unreferenced groups of a source.
func (t *Tx) WipeSourceChannels(ctx context.Context, sourceID int64) error {
	if err := wipeSourceChannels(ctx, t.tx, sourceID); err != nil {
		return fmt.Errorf("WipeSourceChannels: %w", err)
	}
	return nil
}

// UpdateSourceLastUpdated stamps the source with the current time.
func (t *Tx) UpdateSourceLastUpdated(ctx context.Context, sourceID int64) error {
	if err := updateSourceLastUpdated(ctx, t.tx, sourceID); err != nil {
		return fmt.Errorf("UpdateSourceLastUpdated: %w", err)
	}
	return nil
}
