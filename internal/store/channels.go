package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/voyagen/tvcatalog/internal/models"
)

func scanChannel(row interface{ Scan(...any) error }) (models.Channel, error) {
	var ch models.Channel
	err := row.Scan(&ch.ID, &ch.Name, &ch.Image, &ch.URL, &ch.MediaType, &ch.SourceID,
		&ch.Favorite, &ch.SeriesID, &ch.GroupID)
	return ch, err
}

// insertChannel inserts ch unless its (name, url, source) triple already
// exists. A skipped duplicate is not an error: inserted is false and id is 0.
func insertChannel(ctx context.Context, q querier, ch *models.Channel) (id int64, inserted bool, err error) {
	res, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO channels (name, group_id, image, url, source_id, media_type, series_id, favorite)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.Name, ch.GroupID, ch.Image, ch.URL, ch.SourceID, ch.MediaType, ch.SeriesID, ch.Favorite,
	)
	if err != nil {
		return 0, false, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil || n == 0 {
		return 0, false, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func addCustomChannel(ctx context.Context, q querier, cc models.CustomChannel) (int64, error) {
	id, inserted, err := insertChannel(ctx, q, &cc.Data)
	if err != nil {
		return 0, err
	}
	if !inserted {
		return 0, fmt.Errorf("%w: channel %q already exists in source %d", ErrConstraint, cc.Data.Name, cc.Data.SourceID)
	}
	if cc.Headers.IsEmpty() {
		return id, nil
	}
	h := *cc.Headers
	h.ChannelID = id
	if err := insertChannelHeaders(ctx, q, &h); err != nil {
		return 0, err
	}
	return id, nil
}

// AddCustomChannel inserts a user-defined channel and its headers in one
// transaction. A duplicate (name, url, source) is ErrConstraint.
func (s *SQLite) AddCustomChannel(ctx context.Context, cc models.CustomChannel) (int64, error) {
	var id int64
	err := s.pool.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = addCustomChannel(ctx, tx, cc)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("AddCustomChannel: %w", err)
	}
	return id, nil
}

// EditCustomChannel updates the channel row, then upserts its headers or
// deletes them when cc carries none. Any failure rolls back the whole edit.
func (s *SQLite) EditCustomChannel(ctx context.Context, cc models.CustomChannel) error {
	err := s.pool.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE channels SET name = ?, image = ?, url = ?, media_type = ?, group_id = ? WHERE id = ?`,
			cc.Data.Name, cc.Data.Image, cc.Data.URL, cc.Data.MediaType, cc.Data.GroupID, cc.Data.ID,
		)
		if err != nil {
			return classify(err)
		}
		if err := expectOne(res); err != nil {
			return err
		}
		if cc.Headers.IsEmpty() {
			return deleteChannelHeaders(ctx, tx, cc.Data.ID)
		}
		h := *cc.Headers
		h.ChannelID = cc.Data.ID
		return upsertChannelHeaders(ctx, tx, &h)
	})
	if err != nil {
		return fmt.Errorf("EditCustomChannel: %w", err)
	}
	return nil
}

// DeleteCustomChannel deletes a channel and its headers.
func (s *SQLite) DeleteCustomChannel(ctx context.Context, channelID int64) error {
	err := s.pool.WithTx(ctx, func(tx *sql.Tx) error {
		if err := deleteChannelHeaders(ctx, tx, channelID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, channelID)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
	if err != nil {
		return fmt.Errorf("DeleteCustomChannel: %w", err)
	}
	return nil
}

// GetChannelByID returns a single channel by id.
func (s *SQLite) GetChannelByID(ctx context.Context, channelID int64) (*models.Channel, error) {
	var ch models.Channel
	err := s.withConn(ctx, func(q querier) error {
		var err error
		ch, err = scanChannel(q.QueryRowContext(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = ?`, channelID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetChannelByID: %w", err)
	}
	return &ch, nil
}

// FavoriteChannel sets the favorite flag on a channel.
func (s *SQLite) FavoriteChannel(ctx context.Context, channelID int64, favorite bool) error {
	err := s.withConn(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, `UPDATE channels SET favorite = ? WHERE id = ?`, favorite, channelID)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
	if err != nil {
		return fmt.Errorf("FavoriteChannel: %w", err)
	}
	return nil
}

// ChannelExists reports whether the (name, url, source) triple is taken.
func (s *SQLite) ChannelExists(ctx context.Context, name, url string, sourceID int64) (bool, error) {
	var found bool
	err := s.withConn(ctx, func(q querier) error {
		var err error
		found, err = exists(ctx, q,
			`SELECT 1 FROM channels WHERE name = ? AND url = ? AND source_id = ?`, name, url, sourceID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("ChannelExists: %w", err)
	}
	return found, nil
}

// SeriesHasEpisodes reports whether any episode points at seriesID.
func (s *SQLite) SeriesHasEpisodes(ctx context.Context, seriesID int64) (bool, error) {
	var found bool
	err := s.withConn(ctx, func(q querier) error {
		var err error
		found, err = exists(ctx, q, `SELECT 1 FROM channels WHERE series_id = ? LIMIT 1`, seriesID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("SeriesHasEpisodes: %w", err)
	}
	return found, nil
}

func getCustomChannels(ctx context.Context, q querier, groupID *int64, sourceID int64) ([]models.CustomChannel, error) {
	b := &queryBuilder{}
	b.where("c.source_id = ?", sourceID)
	if groupID != nil {
		b.where("c.group_id = ?", *groupID)
	} else {
		b.where("c.group_id IS NULL")
	}
	query := `SELECT c.name, c.image, c.url, c.media_type, h.referrer, h.user_agent, h.http_origin, h.ignore_ssl
		FROM channels c
		LEFT JOIN channel_http_headers h ON h.channel_id = c.id
		WHERE ` + b.conditions() + ` ORDER BY c.id`

	rows, err := q.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.CustomChannel
	for rows.Next() {
		var cc models.CustomChannel
		h := &models.ChannelHttpHeaders{}
		var ignoreSSL sql.NullBool
		if err := rows.Scan(&cc.Data.Name, &cc.Data.Image, &cc.Data.URL, &cc.Data.MediaType,
			&h.Referrer, &h.UserAgent, &h.HTTPOrigin, &ignoreSSL); err != nil {
			return nil, err
		}
		if ignoreSSL.Valid {
			h.IgnoreSSL = &ignoreSSL.Bool
		}
		if !h.IsEmpty() {
			cc.Headers = h
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

// GetCustomChannels lists the channels of a source in groupID, or the
// ungrouped ones when groupID is nil, with their headers.
func (s *SQLite) GetCustomChannels(ctx context.Context, groupID *int64, sourceID int64) ([]models.CustomChannel, error) {
	var out []models.CustomChannel
	err := s.withConn(ctx, func(q querier) error {
		var err error
		out, err = getCustomChannels(ctx, q, groupID, sourceID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetCustomChannels: %w", err)
	}
	return out, nil
}

// GetCustomChannelExtraData returns the headers and group of a channel.
func (s *SQLite) GetCustomChannelExtraData(ctx context.Context, channelID int64, groupID *int64) (*models.CustomChannelExtraData, error) {
	extra := &models.CustomChannelExtraData{}
	err := s.withConn(ctx, func(q querier) error {
		var err error
		extra.Headers, err = getChannelHeaders(ctx, q, channelID)
		if err != nil {
			return err
		}
		if groupID == nil {
			return nil
		}
		extra.Group, err = getGroupByID(ctx, q, *groupID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetCustomChannelExtraData: %w", err)
	}
	return extra, nil
}
