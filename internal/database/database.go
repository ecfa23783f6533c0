package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DefaultBusyTimeoutMs is how long a statement waits on a locked database file
const DefaultBusyTimeoutMs = 5000

// ErrorMode controls whether execution failures reach the caller
type ErrorMode int

const (
	// ErrorModeLog logs execution failures and carries on with a zero result (default)
	ErrorModeLog ErrorMode = iota
	// ErrorModeStrict logs execution failures and returns them as *OpError
	ErrorModeStrict
)

func (m ErrorMode) String() string {
	if m == ErrorModeStrict {
		return "strict"
	}
	return "log"
}

// Config holds the connection settings
type Config struct {
	// Path is the SQLite database file. It is created on first connect.
	Path string
	// BusyTimeoutMs defaults to DefaultBusyTimeoutMs when zero
	BusyTimeoutMs int
	Mode          ErrorMode
}

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
	mode ErrorMode
}

// Open opens the database file at cfg.Path, creating it if it does not exist.
// Failures are logged and returned with a nil handle.
func Open(cfg Config) (*DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Path).Msg("Failed to open database")
		return nil, err
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Path).Msg("Failed to open database")
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One shared connection; SQLite serializes writers anyway
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	// Ping forces the file to be opened (and created)
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		log.Error().Err(err).Str("path", cfg.Path).Msg("Failed to connect to database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug().Str("path", cfg.Path).Str("error_mode", cfg.Mode.String()).Msg("Database connection established")

	return &DB{
		conn: conn,
		path: cfg.Path,
		mode: cfg.Mode,
	}, nil
}

// buildDSN appends the connection pragmas to cfg.Path. The driver splits the
// DSN at the first '?', so a path carrying its own query string is refused.
func buildDSN(cfg Config) (string, error) {
	if strings.ContainsRune(cfg.Path, '?') {
		return "", fmt.Errorf("%w: %q contains a query string", ErrInvalidPath, cfg.Path)
	}

	busyTimeout := cfg.BusyTimeoutMs
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeoutMs
	}

	pragmas := url.Values{}
	pragmas.Add("_pragma", "foreign_keys(1)")
	pragmas.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout))

	return cfg.Path + "?" + pragmas.Encode(), nil
}

// CreateConnection opens path with default settings and returns nil on failure.
// The failure has already been logged; callers only need the nil check.
func CreateConnection(path string) *DB {
	db, err := Open(Config{Path: path})
	if err != nil {
		return nil
	}
	return db
}

// Close releases the connection. Closing a nil or already closed handle is a no-op.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Debug().Str("path", db.path).Msg("Database connection closed")
	return nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Mode returns the current error mode
func (db *DB) Mode() ErrorMode {
	return db.mode
}

// SetMode switches between log-and-continue and strict error handling
func (db *DB) SetMode(mode ErrorMode) {
	db.mode = mode
}

// ready reports ErrNotOpen for nil or closed handles
func (db *DB) ready() error {
	if db == nil || db.conn == nil {
		return ErrNotOpen
	}
	return nil
}
