package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rentalscout/internal/models"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCacheGetPut(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	if _, ok, err := db.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := db.Put(ctx, "k", `{"a":1}`, time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if v, ok, err := db.Get(ctx, "k"); !ok || err != nil || v != `{"a":1}` {
		t.Fatalf("unexpected Get: %q ok=%v err=%v", v, ok, err)
	}

	// Last write wins.
	if err := db.Put(ctx, "k", `{"a":2}`, time.Hour); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if v, _, _ := db.Get(ctx, "k"); v != `{"a":2}` {
		t.Fatalf("expected overwritten value, got %q", v)
	}
}

func TestCacheExpiryAndPurge(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	_ = db.Put(ctx, "short", "a", time.Minute)
	_ = db.Put(ctx, "long", "b", time.Hour)

	now = now.Add(time.Minute)
	if _, ok, _ := db.Get(ctx, "short"); ok {
		t.Fatalf("expected short entry to expire")
	}
	if _, ok, _ := db.Get(ctx, "long"); !ok {
		t.Fatalf("expected long entry to survive")
	}

	n, err := db.PurgeExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 purged row, got %d (%v)", n, err)
	}
}

func TestRecordAndListRuns(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	reports := []models.EnrichmentReport{
		{Key: "a", StartedAt: start, FinishedAt: start.Add(time.Minute), Total: 5, Attempted: 5, Enriched: 4, Failed: 1, Stored: true},
		{Key: "b", StartedAt: start.Add(time.Hour), FinishedAt: start.Add(time.Hour), Total: 2, Error: "airdna authentication failed"},
	}
	for _, r := range reports {
		if _, err := db.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := db.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Key != "b" || runs[0].Error == "" || runs[0].Stored {
		t.Fatalf("unexpected newest run: %+v", runs[0])
	}
	if runs[1].Enriched != 4 || !runs[1].Stored || !runs[1].StartedAt.Equal(start) || runs[1].Duration() != time.Minute {
		t.Fatalf("unexpected oldest run: %+v", runs[1])
	}

	if limited, _ := db.RecentRuns(ctx, 1); len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestStats(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	_ = db.Put(ctx, "a", "1", time.Minute)
	_ = db.Put(ctx, "b", "2", time.Hour)
	if _, err := db.RecordRun(ctx, models.EnrichmentReport{Key: "a", StartedAt: now, FinishedAt: now}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	now = now.Add(2 * time.Minute)
	s, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if s.Entries != 2 || s.Expired != 1 || s.Runs != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
