package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// baselineSchema is the schema every database starts from. Later changes
// live in migrations/ and are applied on top of it.
const baselineSchema = `
CREATE TABLE IF NOT EXISTS "sources" (
  "id"          INTEGER PRIMARY KEY,
  "name"        varchar(100),
  "source_type" integer,
  "url"         varchar(500),
  "username"    varchar(100),
  "password"    varchar(100),
  "enabled"     integer DEFAULT 1
);

CREATE TABLE IF NOT EXISTS "groups" (
  "id"        INTEGER PRIMARY KEY,
  "name"      varchar(100),
  "image"     varchar(500),
  "source_id" integer,
  FOREIGN KEY (source_id) REFERENCES sources(id)
);

CREATE TABLE IF NOT EXISTS "channels" (
  "id"         INTEGER PRIMARY KEY,
  "name"       varchar(100),
  "image"      varchar(500),
  "url"        varchar(500),
  "media_type" integer,
  "source_id"  integer,
  "favorite"   integer DEFAULT 0,
  "series_id"  integer,
  "group_id"   integer,
  FOREIGN KEY (source_id) REFERENCES sources(id),
  FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS "settings" (
  "key"   VARCHAR(50) PRIMARY KEY,
  "value" VARCHAR(100)
);

CREATE UNIQUE INDEX IF NOT EXISTS index_source_name ON sources(name);
CREATE INDEX IF NOT EXISTS index_source_enabled ON sources(enabled);

CREATE UNIQUE INDEX IF NOT EXISTS index_group_unique ON groups(name, source_id);
CREATE INDEX IF NOT EXISTS index_group_name ON groups(name);
CREATE INDEX IF NOT EXISTS index_group_source_id ON groups(source_id);

CREATE INDEX IF NOT EXISTS index_channel_name ON channels(name);
CREATE UNIQUE INDEX IF NOT EXISTS channels_unique ON channels(name, url, source_id);
CREATE INDEX IF NOT EXISTS index_channel_source_id ON channels(source_id);
CREATE INDEX IF NOT EXISTS index_channel_favorite ON channels(favorite);
CREATE INDEX IF NOT EXISTS index_channel_series_id ON channels(series_id);
CREATE INDEX IF NOT EXISTS index_channel_group_id ON channels(group_id);
CREATE INDEX IF NOT EXISTS index_channel_media_type ON channels(media_type);
`

// SchemaPresent reports whether the baseline tables exist.
func SchemaPresent(ctx context.Context, p *Pool) (bool, error) {
	var present bool
	err := p.WithConn(ctx, func(c *Conn) error {
		var one int
		err := c.QueryRowContext(ctx,
			`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'channels' LIMIT 1`,
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		present = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("SchemaPresent: %w", err)
	}
	return present, nil
}

// CreateBaseline creates the baseline tables and indexes in one transaction.
func CreateBaseline(ctx context.Context, p *Pool) error {
	err := p.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, baselineSchema)
		return err
	})
	if err != nil {
		return fmt.Errorf("CreateBaseline: %w", err)
	}
	return nil
}

// Initialize brings the database file behind p up to date: the baseline is
// created when absent, then every pending migration is applied. A migration
// failure is wrapped with ErrMigration and the database must not be used.
func Initialize(ctx context.Context, p *Pool) error {
	present, err := SchemaPresent(ctx, p)
	if err != nil {
		return err
	}
	if !present {
		if err := CreateBaseline(ctx, p); err != nil {
			return err
		}
		p.log.Info().Str("path", p.Path()).Msg("baseline schema created")
	}
	return ApplyPendingMigrations(p.Path(), p.log)
}
