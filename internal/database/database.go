package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rentalscout/internal/models"
)

// Database is a SQLite-backed cache store and enrichment run log.
type Database struct {
	db  *sql.DB
	now func() time.Time
}

// NewDatabase opens (or creates) the database at dbPath and brings the schema up to date.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_cache_size=10000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	database := &Database{db: db, now: time.Now}

	if err := database.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Get returns the unexpired value stored under key.
func (d *Database) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.db.QueryRowContext(ctx,
		`SELECT value FROM kv_cache WHERE key = ? AND expires_at > ?`,
		key, d.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

// Put stores value under key until ttl elapses. Existing entries are replaced.
func (d *Database) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	now := d.now()
	query := `
		INSERT INTO kv_cache (key, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`
	if _, err := d.db.ExecContext(ctx, query, key, value, now.Add(ttl).UnixMilli(), now.UnixMilli()); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired cache entries and returns how many were removed.
func (d *Database) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM kv_cache WHERE expires_at <= ?`, d.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return result.RowsAffected()
}

// CacheStats counts live and expired cache entries.
type CacheStats struct {
	Entries int64
	Expired int64
	Runs    int64
}

// Stats reports table sizes for the maintenance tool.
func (d *Database) Stats(ctx context.Context) (CacheStats, error) {
	var s CacheStats
	err := d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
			(SELECT COUNT(*) FROM enrichment_runs)
		FROM kv_cache
	`, d.now().UnixMilli()).Scan(&s.Entries, &s.Expired, &s.Runs)
	if err != nil {
		return s, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return s, nil
}

// RecordRun appends an enrichment report to the run log.
func (d *Database) RecordRun(ctx context.Context, r models.EnrichmentReport) (int64, error) {
	query := `
		INSERT INTO enrichment_runs
		(cache_key, started_at, finished_at, total, attempted, enriched, failed, stored, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var errText interface{}
	if r.Error != "" {
		errText = r.Error
	}

	result, err := d.db.ExecContext(ctx, query, r.Key, r.StartedAt.UTC(), r.FinishedAt.UTC(),
		r.Total, r.Attempted, r.Enriched, r.Failed, r.Stored, errText)
	if err != nil {
		return 0, fmt.Errorf("failed to record enrichment run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return id, nil
}

// RecentRuns returns the latest enrichment reports, newest first.
func (d *Database) RecentRuns(ctx context.Context, limit int) ([]models.EnrichmentReport, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, cache_key, started_at, finished_at, total, attempted, enriched, failed, stored, error
		FROM enrichment_runs
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrichment runs: %w", err)
	}
	defer rows.Close()

	runs := []models.EnrichmentReport{}
	for rows.Next() {
		var r models.EnrichmentReport
		var errText sql.NullString
		if err := rows.Scan(&r.ID, &r.Key, &r.StartedAt, &r.FinishedAt, &r.Total, &r.Attempted,
			&r.Enriched, &r.Failed, &r.Stored, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Error = errText.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
