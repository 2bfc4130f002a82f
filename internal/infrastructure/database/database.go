package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// openTimeout bounds the connectivity check performed by Open.
const openTimeout = 5 * time.Second

// Config selects the SQLite file and its pragmas. It maps to the
// database section of the configuration.
type Config struct {
	// Path to the database file. The parent directory is created on open.
	Path string

	// WALMode turns on write-ahead logging, allowing reads during writes.
	WALMode bool

	// BusyTimeout is how long a blocked statement waits for the lock,
	// in seconds.
	BusyTimeout int
}

// DB is an open SQLite handle. The embedded sql.DB carries the full
// query surface; DB adds migrations and a health check.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the SQLite database at cfg.Path and
// verifies it responds. The pool is pinned to a single connection:
// SQLite allows one writer, and the topology store serializes its
// transactions over that writer anyway.
func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, errors.New("database: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, fmt.Errorf("database: creating directory: %w", err)
	}

	handle, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("database: opening %s: %w", cfg.Path, err)
	}
	handle.SetMaxOpenConns(1)
	handle.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := handle.PingContext(ctx); err != nil {
		handle.Close() //nolint:errcheck // already on the error path
		return nil, fmt.Errorf("database: verifying %s: %w", cfg.Path, err)
	}

	// The file may not exist until the first write; tighten permissions
	// when it does.
	_ = os.Chmod(cfg.Path, 0o600)

	return &DB{DB: handle, path: cfg.Path}, nil
}

// dsn renders the go-sqlite3 connection string for cfg.
func dsn(cfg Config) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", strconv.Itoa(cfg.BusyTimeout*1000))
	if cfg.WALMode {
		q.Set("_journal_mode", "WAL")
		q.Set("_synchronous", "NORMAL")
	}
	return "file:" + cfg.Path + "?" + q.Encode()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck runs a trivial query to confirm the handle still answers.
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database: health check: %w", err)
	}
	return nil
}

// Close releases the handle. Closing a never-opened DB is a no-op.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	return db.DB.Close()
}
