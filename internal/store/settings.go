package store

import (
	"context"
	"database/sql"
	"fmt"
)

// GetSettings returns every stored setting.
func (s *SQLite) GetSettings(ctx context.Context) (map[string]string, error) {
	settings := make(map[string]string)
	err := s.withConn(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx, `SELECT key, value FROM settings`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var key string
			var value sql.NullString
			if err := rows.Scan(&key, &value); err != nil {
				return err
			}
			settings[key] = value.String
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("GetSettings: %w", err)
	}
	return settings, nil
}

// UpdateSettings upserts every key of values in one transaction. Keys not in
// values keep their stored value.
func (s *SQLite) UpdateSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	err := s.pool.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for k, v := range values {
			if _, err := stmt.ExecContext(ctx, k, v); err != nil {
				return fmt.Errorf("setting %q: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("UpdateSettings: %w", err)
	}
	return nil
}
