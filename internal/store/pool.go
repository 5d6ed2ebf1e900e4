package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackc/puddle/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver
)

// PoolOptions configures a Pool.
type PoolOptions struct {
	// Size is the maximum number of open connections. Fixed for the life of the pool.
	Size int
	// AcquireTimeout bounds how long Acquire waits for a free connection.
	AcquireTimeout time.Duration
	Logger         zerolog.Logger
}

// Pool lends connections to a single SQLite database file.
type Pool struct {
	db             *sql.DB
	conns          *puddle.Pool[*sql.Conn]
	path           string
	acquireTimeout time.Duration
	log            zerolog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Conn is a pooled connection. Release must be called exactly once.
type Conn struct {
	*sql.Conn
	res *puddle.Resource[*sql.Conn]
}

// Release returns the connection to the pool.
func (c *Conn) Release() {
	c.res.Release()
}

// discard closes the connection instead of returning it.
func (c *Conn) discard() {
	c.res.Destroy()
}

// OpenPool opens (creating it and its parent directories when missing) the
// database file at path.
func OpenPool(ctx context.Context, path string, opts PoolOptions) (*Pool, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("OpenPool: invalid size %d", opts.Size)
	}
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = 2 * time.Second
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL lets the UI read while an import holds the write lock; busy_timeout
	// makes competing writers wait instead of failing with SQLITE_BUSY.
	// Transactions begin IMMEDIATE so a read-then-write unit holds the write
	// lock from BEGIN and never has to upgrade a read snapshot.
	dsn := path + "?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(opts.Size)
	db.SetMaxIdleConns(opts.Size)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	conns, err := puddle.NewPool(&puddle.Config[*sql.Conn]{
		Constructor: func(ctx context.Context) (*sql.Conn, error) {
			return db.Conn(ctx)
		},
		Destructor: func(c *sql.Conn) {
			_ = c.Close()
		},
		MaxSize: int32(opts.Size),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	opts.Logger.Debug().
		Str("path", path).
		Int("size", opts.Size).
		Dur("acquire_timeout", opts.AcquireTimeout).
		Msg("database pool opened")

	return &Pool{
		db:             db,
		conns:          conns,
		path:           path,
		acquireTimeout: opts.AcquireTimeout,
		log:            opts.Logger,
	}, nil
}

// Path returns the database file path.
func (p *Pool) Path() string {
	return p.path
}

// Close releases every connection and closes the database handle. It waits
// for acquired connections to be released. Later calls are no-ops.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.conns.Close()
		p.closeErr = p.db.Close()
	})
	return p.closeErr
}

// Stat reports pool usage.
func (p *Pool) Stat() *puddle.Stat {
	return p.conns.Stat()
}

// Acquire returns a pooled connection. It fails with ErrPoolExhausted when
// none frees up within the acquire timeout.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	actx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	res, err := p.conns.Acquire(actx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrPoolExhausted
		}
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Conn{Conn: res.Value(), res: res}, nil
}

// WithConn runs fn on a pooled connection and releases it afterwards.
// A connection that reported driver.ErrBadConn is destroyed instead.
func (p *Pool) WithConn(ctx context.Context, fn func(*Conn) error) (err error) {
	c, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if errors.Is(err, driver.ErrBadConn) {
			c.discard()
			return
		}
		c.Release()
	}()
	return fn(c)
}

// WithTx runs fn inside a transaction on a pooled connection. The
// transaction commits when fn returns nil and rolls back when fn returns an
// error or panics. Returning ErrRollback rolls back and reports success.
// Lock contention that outlasts the busy timeout is reported as ErrBusy.
func (p *Pool) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	err := p.WithConn(ctx, func(c *Conn) error {
		tx, err := c.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer func() {
			if r := recover(); r != nil {
				p.rollback(tx)
				panic(r)
			}
		}()

		if err := fn(tx); err != nil {
			p.rollback(tx)
			if errors.Is(err, ErrRollback) {
				return nil
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
	return classifyBusy(err)
}

func (p *Pool) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		p.log.Error().Err(err).Msg("rollback failed")
	}
}
