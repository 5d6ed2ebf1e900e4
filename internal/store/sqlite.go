package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// querier is satisfied by pooled connections and transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite implements Store on an embedded SQLite database file.
type SQLite struct {
	pool *Pool
	log  zerolog.Logger
}

var _ Store = (*SQLite)(nil)

// Open opens the database at path, creating the file and its directories
// when missing, and brings the schema up to date. Caller must call Close
// when done.
func Open(ctx context.Context, path string, opts PoolOptions) (*SQLite, error) {
	pool, err := OpenPool(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if err := Initialize(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewSQLite(pool), nil
}

// NewSQLite wraps an already initialized pool.
func NewSQLite(pool *Pool) *SQLite {
	return &SQLite{pool: pool, log: pool.log}
}

// Pool returns the underlying connection pool.
func (s *SQLite) Pool() *Pool {
	return s.pool
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	return s.pool.Close()
}

// DeleteDatabase closes the pool and removes the database file together
// with its WAL side files. The store is unusable afterwards.
func (s *SQLite) DeleteDatabase(_ context.Context) error {
	path := s.pool.Path()
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("DeleteDatabase: close: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("DeleteDatabase: %w", err)
	}
	for _, side := range []string{path + "-wal", path + "-shm"} {
		if err := os.Remove(side); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("DeleteDatabase: %w", err)
		}
	}
	s.log.Warn().Str("path", path).Msg("database deleted")
	return nil
}

// DoTx runs fn in a single transaction. Any error returned by fn, or by
// one of the Tx methods it calls, rolls back every statement of the unit.
func (s *SQLite) DoTx(ctx context.Context, fn func(*Tx) error) error {
	return s.pool.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&Tx{tx: tx})
	})
}

func (s *SQLite) withConn(ctx context.Context, fn func(q querier) error) error {
	return s.pool.WithConn(ctx, func(c *Conn) error {
		return fn(c)
	})
}

// exists runs a "SELECT 1 ..." query and reports whether it returned a row.
func exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// expectOne turns a zero-row result into ErrNotFound.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
