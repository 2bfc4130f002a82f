package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"time"
)

// Schema migrations are plain SQL files registered at init time by the
// migrations package via SetMigrations. A file named
//
//	20260830_120000_initial_schema.up.sql
//
// carries version 20260830_120000; an optional .down.sql twin with the
// same version supplies the rollback. Applied versions are tracked in
// the schema_migrations table, and each migration commits in its own
// transaction so a failure leaves everything before it applied.

var migrationSource fs.FS

// SetMigrations registers the filesystem Migrate reads migration files
// from. Passing nil clears the registration.
func SetMigrations(fsys fs.FS) {
	migrationSource = fsys
}

// migrationFile matches versioned migration filenames and captures the
// version, the description, and the direction.
var migrationFile = regexp.MustCompile(`^(\d{8}_\d{6})_(.+)\.(up|down)\.sql$`)

type migration struct {
	version string
	name    string
	up      string
	down    string
}

// Migrate applies every registered migration that has not run yet,
// oldest version first. It is safe to call on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	pending, err := db.pendingMigrations(ctx)
	if err != nil || len(pending) == 0 {
		return err
	}

	for _, m := range pending {
		if err := db.inTx(ctx, func(exec func(query string, args ...any) error) error {
			if err := exec(m.up); err != nil {
				return fmt.Errorf("applying %s (%s): %w", m.version, m.name, err)
			}
			return exec(
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				m.version, time.Now().UTC().Format(time.RFC3339),
			)
		}); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown rolls back the most recently applied migration. It exists
// for development and tests; the daemon never calls it.
func (db *DB) MigrateDown(ctx context.Context) error {
	if err := db.ensureVersionTable(ctx); err != nil {
		return err
	}

	var latest string
	err := db.QueryRowContext(ctx,
		"SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1",
	).Scan(&latest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil // nothing applied
	case err != nil:
		return fmt.Errorf("finding latest migration: %w", err)
	}

	all, err := loadMigrations(migrationSource)
	if err != nil {
		return err
	}
	var target *migration
	for i := range all {
		if all[i].version == latest {
			target = &all[i]
			break
		}
	}
	if target == nil || target.down == "" {
		return fmt.Errorf("migration %s has no rollback", latest)
	}

	return db.inTx(ctx, func(exec func(query string, args ...any) error) error {
		if err := exec(target.down); err != nil {
			return fmt.Errorf("rolling back %s: %w", target.version, err)
		}
		return exec("DELETE FROM schema_migrations WHERE version = ?", target.version)
	})
}

// pendingMigrations returns the registered migrations not yet recorded
// in schema_migrations, in version order.
func (db *DB) pendingMigrations(ctx context.Context) ([]migration, error) {
	if err := db.ensureVersionTable(ctx); err != nil {
		return nil, err
	}

	all, err := loadMigrations(migrationSource)
	if err != nil || len(all) == 0 {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning applied migration: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var pending []migration
	for _, m := range all {
		if !applied[m.version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func (db *DB) ensureVersionTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}
	return nil
}

// inTx runs fn inside a transaction, committing on nil and rolling back
// on error. fn receives an exec function bound to the transaction.
func (db *DB) inTx(ctx context.Context, fn func(exec func(query string, args ...any) error) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	exec := func(query string, args ...any) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
	if err := fn(exec); err != nil {
		return err
	}
	return tx.Commit()
}

// loadMigrations reads every versioned .sql file in fsys, pairing up and
// down scripts by version. Files that do not match the naming scheme are
// ignored. A nil fsys yields no migrations.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	if fsys == nil {
		return nil, nil
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migration directory: %w", err)
	}

	byVersion := make(map[string]*migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		parts := migrationFile.FindStringSubmatch(entry.Name())
		if parts == nil {
			continue
		}
		version, name, direction := parts[1], parts[2], parts[3]

		sqlText, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		m := byVersion[version]
		if m == nil {
			m = &migration{version: version, name: name}
			byVersion[version] = m
		}
		if direction == "up" {
			m.up = string(sqlText)
		} else {
			m.down = string(sqlText)
		}
	}

	var out []migration
	for _, m := range byVersion {
		if m.up == "" {
			return nil, fmt.Errorf("migration %s has a rollback but no up script", m.version)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}
