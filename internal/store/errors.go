package store

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a row that must exist does not, including
	// deletes and updates that affected zero rows.
	ErrNotFound = errors.New("not found")

	// ErrPoolExhausted is returned when no connection became available within
	// the acquire timeout. Callers may retry.
	ErrPoolExhausted = errors.New("no database connection available")

	// ErrConstraint wraps uniqueness and foreign key violations.
	ErrConstraint = errors.New("constraint violation")

	// ErrMigration wraps any failure while bringing the schema up to date.
	// The store must not be used after it.
	ErrMigration = errors.New("schema migration failed")

	// ErrBusy is returned when a transaction could not take the database
	// lock before the busy timeout ran out. Callers may retry.
	ErrBusy = errors.New("database busy")

	// ErrRollback can be returned from a WithTx callback to abort the
	// transaction without reporting an error.
	ErrRollback = errors.New("rollback")
)

// isConstraintErr reports whether err is an SQLite constraint failure.
func isConstraintErr(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// classify wraps constraint failures with ErrConstraint and leaves other
// errors untouched.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrConstraint) || !isConstraintErr(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrConstraint, err)
}

// isBusyErr reports whether err is SQLITE_BUSY or SQLITE_LOCKED, including
// their extended codes.
func isBusyErr(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// classifyBusy wraps lock contention failures with ErrBusy.
func classifyBusy(err error) error {
	if err == nil || errors.Is(err, ErrBusy) || !isBusyErr(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrBusy, err)
}
