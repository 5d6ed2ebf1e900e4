package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/voyagen/tvcatalog/internal/models"
)

// insertChannelHeaders stores h unless it is empty or the channel already
// has headers.
func insertChannelHeaders(ctx context.Context, q querier, h *models.ChannelHttpHeaders) error {
	if h.IsEmpty() {
		return nil
	}
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO channel_http_headers (channel_id, referrer, user_agent, http_origin, ignore_ssl)
		 VALUES (?, ?, ?, ?, ?)`,
		h.ChannelID, h.Referrer, h.UserAgent, h.HTTPOrigin, ignoreSSL(h),
	)
	return classify(err)
}

// upsertChannelHeaders inserts h or overwrites every header field of the
// channel's existing row.
func upsertChannelHeaders(ctx context.Context, q querier, h *models.ChannelHttpHeaders) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO channel_http_headers (channel_id, referrer, user_agent, http_origin, ignore_ssl)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (channel_id) DO UPDATE SET
		   referrer = excluded.referrer, user_agent = excluded.user_agent,
		   http_origin = excluded.http_origin, ignore_ssl = excluded.ignore_ssl`,
		h.ChannelID, h.Referrer, h.UserAgent, h.HTTPOrigin, ignoreSSL(h),
	)
	if err != nil {
		return fmt.Errorf("upsert channel_http_headers: %w", classify(err))
	}
	return nil
}

func deleteChannelHeaders(ctx context.Context, q querier, channelID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM channel_http_headers WHERE channel_id = ?`, channelID); err != nil {
		return fmt.Errorf("delete channel_http_headers: %w", err)
	}
	return nil
}

func getChannelHeaders(ctx context.Context, q querier, channelID int64) (*models.ChannelHttpHeaders, error) {
	h := &models.ChannelHttpHeaders{}
	var ignore sql.NullBool
	err := q.QueryRowContext(ctx,
		`SELECT id, channel_id, referrer, user_agent, http_origin, ignore_ssl
		 FROM channel_http_headers WHERE channel_id = ?`, channelID,
	).Scan(&h.ID, &h.ChannelID, &h.Referrer, &h.UserAgent, &h.HTTPOrigin, &ignore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ignore.Valid {
		h.IgnoreSSL = &ignore.Bool
	}
	return h, nil
}

// GetChannelHeadersByID returns the headers of a channel, or nil when the
// channel uses the defaults.
func (s *SQLite) GetChannelHeadersByID(ctx context.Context, channelID int64) (*models.ChannelHttpHeaders, error) {
	var h *models.ChannelHttpHeaders
	err := s.withConn(ctx, func(q querier) error {
		var err error
		h, err = getChannelHeaders(ctx, q, channelID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetChannelHeadersByID: %w", err)
	}
	return h, nil
}

func ignoreSSL(h *models.ChannelHttpHeaders) bool {
	return h.IgnoreSSL != nil && *h.IgnoreSSL
}
