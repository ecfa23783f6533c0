package database

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotOpen is returned when a helper is called on a nil or closed handle
	ErrNotOpen = errors.New("database not open")
	// ErrUnknownTable is returned for table names outside the schema
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownColumn is returned for column names outside the table's schema
	ErrUnknownColumn = errors.New("unknown column")
	// ErrEmptyFilter is returned when a WHERE or SET clause would have no terms
	ErrEmptyFilter = errors.New("empty column filter")
	// ErrInvalidPath is returned by Open for paths that already carry a query string
	ErrInvalidPath = errors.New("invalid database path")
)

// OpError describes a failed helper call
type OpError struct {
	Op    string
	Table string
	Err   error
}

func (e *OpError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsUsageError reports whether err comes from a bad call (closed handle,
// unknown identifier, empty filter) rather than from executing SQL.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrNotOpen) ||
		errors.Is(err, ErrUnknownTable) ||
		errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrEmptyFilter) ||
		errors.Is(err, ErrInvalidPath)
}

// reject logs and returns a usage error. These are returned in every mode.
func (db *DB) reject(op, table string, err error) error {
	log.Error().Err(err).Str("op", op).Str("table", table).Msg("Rejected database call")
	return &OpError{Op: op, Table: table, Err: err}
}

// fail logs an execution error; only strict mode passes it on
func (db *DB) fail(op, table string, err error) error {
	log.Error().Err(err).Str("op", op).Str("table", table).Msg("Database operation failed")
	if db.mode == ErrorModeStrict {
		return &OpError{Op: op, Table: table, Err: err}
	}
	return nil
}
