package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/voyagen/tvcatalog/internal/models"
)

const sourceColumns = "id, name, source_type, url, username, password, enabled, use_tvg_id, last_updated"

func scanSource(row interface{ Scan(...any) error }) (models.Source, error) {
	var src models.Source
	var useTvgID sql.NullBool
	var lastUpdated sql.NullInt64
	if err := row.Scan(&src.ID, &src.Name, &src.SourceType, &src.URL, &src.Username,
		&src.Password, &src.Enabled, &useTvgID, &lastUpdated); err != nil {
		return src, err
	}
	if useTvgID.Valid {
		src.UseTvgID = &useTvgID.Bool
	}
	if lastUpdated.Valid {
		t := time.Unix(lastUpdated.Int64, 0).UTC()
		src.LastUpdated = &t
	}
	return src, nil
}

func createOrFindSource(ctx context.Context, q querier, src *models.Source) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM sources WHERE name = ?`, src.Name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO sources (name, source_type, url, username, password, enabled, use_tvg_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		src.Name, src.SourceType, src.URL, src.Username, src.Password, src.Enabled, src.UseTvgID,
	)
	if err != nil {
		return 0, classify(err)
	}
	return res.LastInsertId()
}

// CreateOrFindSource looks the source up by name and inserts it when absent,
// in one transaction. Re-importing a playlist under the same name reuses the row.
func (s *SQLite) CreateOrFindSource(ctx context.Context, src *models.Source) (int64, error) {
	var id int64
	err := s.DoTx(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.CreateOrFindSource(ctx, src)
		return err
	})
	return id, err
}

func (s *SQLite) listSources(ctx context.Context, query string, args ...any) ([]models.Source, error) {
	var sources []models.Source
	err := s.withConn(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			src, err := scanSource(rows)
			if err != nil {
				return err
			}
			sources = append(sources, src)
		}
		return rows.Err()
	})
	return sources, err
}

// GetSources returns all sources.
func (s *SQLite) GetSources(ctx context.Context) ([]models.Source, error) {
	sources, err := s.listSources(ctx, `SELECT `+sourceColumns+` FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("GetSources: %w", err)
	}
	return sources, nil
}

// GetEnabledSources returns the enabled sources.
func (s *SQLite) GetEnabledSources(ctx context.Context) ([]models.Source, error) {
	sources, err := s.listSources(ctx, `SELECT `+sourceColumns+` FROM sources WHERE enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("GetEnabledSources: %w", err)
	}
	return sources, nil
}

func (s *SQLite) getSource(ctx context.Context, query string, args ...any) (*models.Source, error) {
	var src models.Source
	err := s.withConn(ctx, func(q querier) error {
		var err error
		src, err = scanSource(q.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &src, nil
}

// GetSourceByID returns a single source by id.
func (s *SQLite) GetSourceByID(ctx context.Context, sourceID int64) (*models.Source, error) {
	src, err := s.getSource(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = ?`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("GetSourceByID: %w", err)
	}
	return src, nil
}

// GetSourceFromSeriesID returns the source of a series. Series rows keep the
// provider's series id in their url column.
func (s *SQLite) GetSourceFromSeriesID(ctx context.Context, seriesID int64) (*models.Source, error) {
	src, err := s.getSource(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = (
		   SELECT source_id FROM channels WHERE url = ? AND media_type = ? LIMIT 1
		 )`,
		strconv.FormatInt(seriesID, 10), models.MediaTypeSerie,
	)
	if err != nil {
		return nil, fmt.Errorf("GetSourceFromSeriesID: %w", err)
	}
	return src, nil
}

// SourceNameExists reports whether a source already uses name.
func (s *SQLite) SourceNameExists(ctx context.Context, name string) (bool, error) {
	var found bool
	err := s.withConn(ctx, func(q querier) error {
		var err error
		found, err = exists(ctx, q, `SELECT 1 FROM sources WHERE name = ?`, name)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("SourceNameExists: %w", err)
	}
	return found, nil
}

// SetSourceEnabled toggles a source.
func (s *SQLite) SetSourceEnabled(ctx context.Context, sourceID int64, enabled bool) error {
	return s.UpdateSource(ctx, sourceID, SourceUpdate{Enabled: &enabled})
}

// UpdateSource updates the non-nil fields of a source.
func (s *SQLite) UpdateSource(ctx context.Context, sourceID int64, fields SourceUpdate) error {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if fields.Name != nil {
		set("name", *fields.Name)
	}
	if fields.URL != nil {
		set("url", *fields.URL)
	}
	if fields.Username != nil {
		set("username", *fields.Username)
	}
	if fields.Password != nil {
		set("password", *fields.Password)
	}
	if fields.Enabled != nil {
		set("enabled", *fields.Enabled)
	}
	if fields.UseTvgID != nil {
		set("use_tvg_id", *fields.UseTvgID)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, sourceID)

	err := s.withConn(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, `UPDATE sources SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return classify(err)
		}
		return expectOne(res)
	})
	if err != nil {
		return fmt.Errorf("UpdateSource: %w", err)
	}
	return nil
}

func updateSourceLastUpdated(ctx context.Context, q querier, sourceID int64) error {
	res, err := q.ExecContext(ctx, `UPDATE sources SET last_updated = ? WHERE id = ?`, time.Now().Unix(), sourceID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// UpdateSourceLastUpdated sets last_updated for the source.
func (s *SQLite) UpdateSourceLastUpdated(ctx context.Context, sourceID int64) error {
	err := s.withConn(ctx, func(q querier) error {
		return updateSourceLastUpdated(ctx, q, sourceID)
	})
	if err != nil {
		return fmt.Errorf("UpdateSourceLastUpdated: %w", err)
	}
	return nil
}

// GetChannelCountBySource counts the channels of a source.
func (s *SQLite) GetChannelCountBySource(ctx context.Context, sourceID int64) (int64, error) {
	var n int64
	err := s.withConn(ctx, func(q querier) error {
		return q.QueryRowContext(ctx, `SELECT COUNT(*) FROM channels WHERE source_id = ?`, sourceID).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("GetChannelCountBySource: %w", err)
	}
	return n, nil
}

// wipeSourceChannels deletes the non-favorite channels of a source and the
// groups no favorite channel points to. Favorites survive a provider resync.
func wipeSourceChannels(ctx context.Context, q querier, sourceID int64) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM channel_http_headers WHERE channel_id IN (
		   SELECT id FROM channels WHERE source_id = ? AND favorite = 0
		 )`, sourceID)
	if err != nil {
		return fmt.Errorf("delete channel_http_headers: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM channels WHERE source_id = ? AND favorite = 0`, sourceID); err != nil {
		return fmt.Errorf("delete channels: %w", err)
	}
	_, err = q.ExecContext(ctx,
		`DELETE FROM groups WHERE source_id = ? AND id NOT IN (
		   SELECT group_id FROM channels WHERE favorite = 1 AND group_id IS NOT NULL
		 )`, sourceID)
	if err != nil {
		return fmt.Errorf("delete groups: %w", err)
	}
	return nil
}

// WipeSourceChannels prepares a source for re-import in one transaction.
func (s *SQLite) WipeSourceChannels(ctx context.Context, sourceID int64) error {
	err := s.pool.WithTx(ctx, func(tx *sql.Tx) error {
		return wipeSourceChannels(ctx, tx, sourceID)
	})
	if err != nil {
		return fmt.Errorf("WipeSourceChannels: %w", err)
	}
	return nil
}

// DeleteSource deletes, in order, the headers and channels of the source,
// its groups and the source row. A missing source is ErrNotFound.
func (s *SQLite) DeleteSource(ctx context.Context, sourceID int64) error {
	err := s.pool.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM channel_http_headers WHERE channel_id IN (SELECT id FROM channels WHERE source_id = ?)`,
			sourceID)
		if err != nil {
			return fmt.Errorf("delete channel_http_headers: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM channels WHERE source_id = ?`, sourceID); err != nil {
			return fmt.Errorf("delete channels: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE source_id = ?`, sourceID); err != nil {
			return fmt.Errorf("delete groups: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, sourceID)
		if err != nil {
			return fmt.Errorf("delete source: %w", err)
		}
		return expectOne(res)
	})
	if err != nil {
		return fmt.Errorf("DeleteSource: %w", err)
	}
	s.log.Debug().Int64("source_id", sourceID).Msg("source deleted")
	return nil
}
