package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
)

type migration struct {
	version int
	name    string
	sql     string
}

// migrations are applied in order; applied versions are tracked in database_metadata.
var migrations = []migration{
	{
		version: 1,
		name:    "kv cache",
		sql: `
			CREATE TABLE IF NOT EXISTS kv_cache (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				expires_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_kv_cache_expires_at ON kv_cache(expires_at);
		`,
	},
	{
		version: 2,
		name:    "enrichment runs",
		sql: `
			CREATE TABLE IF NOT EXISTS enrichment_runs (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				cache_key   TEXT NOT NULL,
				started_at  DATETIME NOT NULL,
				finished_at DATETIME NOT NULL,
				total       INTEGER NOT NULL DEFAULT 0,
				attempted   INTEGER NOT NULL DEFAULT 0,
				enriched    INTEGER NOT NULL DEFAULT 0,
				failed      INTEGER NOT NULL DEFAULT 0,
				stored      BOOLEAN NOT NULL DEFAULT 0,
				error       TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_enrichment_runs_key ON enrichment_runs(cache_key);
		`,
	},
}

// migrate applies every migration newer than the recorded schema version.
func (d *Database) migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS database_metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	current, err := d.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return err
		}
		log.Printf("💾 [database] applied migration %d (%s)", m.version, m.name)
	}
	return nil
}

func (d *Database) apply(ctx context.Context, m migration) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO database_metadata (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, strconv.Itoa(m.version))
	if err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SchemaVersion returns the last applied migration, or 0 for a new database.
func (d *Database) SchemaVersion(ctx context.Context) (int, error) {
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM database_metadata WHERE key = 'schema_version'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid schema version %q: %w", value, err)
	}
	return v, nil
}
