package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable is the ledger of applied migrations inside the database file.
const migrationsTable = "schema_migrations"

// ApplyPendingMigrations applies, in order, every embedded migration not yet
// recorded in the ledger of the database at path. It uses its own connection
// because the migration driver closes the handle it is given.
func ApplyPendingMigrations(path string, log zerolog.Logger) error {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("%w: open: %w", ErrMigration, err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return fmt.Errorf("%w: source: %w", ErrMigration, err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		src.Close()
		db.Close()
		return fmt.Errorf("%w: driver: %w", ErrMigration, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return fmt.Errorf("%w: migrate.NewWithInstance: %w", ErrMigration, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: migrate.Up: %w", ErrMigration, err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("%w: version: %w", ErrMigration, err)
	}
	if dirty {
		return fmt.Errorf("%w: version %d is dirty", ErrMigration, version)
	}
	log.Debug().Uint("version", version).Msg("schema up to date")
	return nil
}

// SchemaVersion returns the last applied migration version, 0 when none.
func SchemaVersion(ctx context.Context, p *Pool) (uint, error) {
	var version uint
	err := p.WithConn(ctx, func(c *Conn) error {
		err := c.QueryRowContext(ctx, `SELECT version FROM `+migrationsTable+` LIMIT 1`).Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("SchemaVersion: %w", err)
	}
	return version, nil
}
