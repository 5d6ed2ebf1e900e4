package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voyagen/tvcatalog/internal/models"
)

// AddEPG stores a program reminder, replacing one with the same id. An
// empty EPGID gets a generated one; the stored id is returned.
func (s *SQLite) AddEPG(ctx context.Context, epg models.EPGNotify) (string, error) {
	if epg.EPGID == "" {
		epg.EPGID = uuid.NewString()
	}
	err := s.withConn(ctx, func(q querier) error {
		_, err := q.ExecContext(ctx,
			`INSERT INTO epgs (epg_id, title, channel_name, start_timestamp) VALUES (?, ?, ?, ?)
			 ON CONFLICT (epg_id) DO UPDATE SET
			   title = excluded.title, channel_name = excluded.channel_name,
			   start_timestamp = excluded.start_timestamp`,
			epg.EPGID, epg.Title, epg.ChannelName, epg.StartTimestamp,
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("AddEPG: %w", err)
	}
	return epg.EPGID, nil
}

// RemoveEPG deletes a program reminder.
func (s *SQLite) RemoveEPG(ctx context.Context, epgID string) error {
	err := s.withConn(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, `DELETE FROM epgs WHERE epg_id = ?`, epgID)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
	if err != nil {
		return fmt.Errorf("RemoveEPG: %w", err)
	}
	return nil
}

// GetEPGs lists reminders by start time.
func (s *SQLite) GetEPGs(ctx context.Context) ([]models.EPGNotify, error) {
	var out []models.EPGNotify
	err := s.withConn(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx,
			`SELECT epg_id, title, channel_name, start_timestamp FROM epgs ORDER BY start_timestamp, epg_id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var e models.EPGNotify
			if err := rows.Scan(&e.EPGID, &e.Title, &e.ChannelName, &e.StartTimestamp); err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("GetEPGs: %w", err)
	}
	return out, nil
}

// CleanEPGs deletes reminders whose start is before now and returns how many.
func (s *SQLite) CleanEPGs(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.withConn(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, `DELETE FROM epgs WHERE start_timestamp < ?`, now.Unix())
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("CleanEPGs: %w", err)
	}
	return n, nil
}
