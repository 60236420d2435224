package cache

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"rentalscout/internal/models"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func sampleSet(at time.Time) *models.SearchResultSet {
	hoa := 120
	rent, cost := 3100.0, 2400.0
	l := models.Listing{
		Address:     "12 Lake Dr, Austin, TX 78704",
		URL:         "https://www.redfin.com/TX/Austin/12-Lake-Dr/home/12",
		Price:       410000,
		Beds:        3,
		Baths:       2,
		Sqft:        1700,
		HOA:         &hoa,
		Features:    []string{"Pool", "HOA $120/mo"},
		MonthlyCost: &cost,
		MonthlyRent: &rent,
	}
	l.Recompute()
	return models.NewSearchResultSet("https://www.redfin.com/zipcode/78704", []models.Listing{l}, at)
}

func TestResultCacheRoundTrip(t *testing.T) {
	clk := newClock()
	c := NewResultCache(NewMemoryStoreWithClock(clk.Now), time.Hour)
	set := sampleSet(clk.Now())
	ctx := context.Background()

	if err := c.Put(ctx, "k", set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, set) {
		t.Fatalf("round trip changed the set:\n got %+v\nwant %+v", got, set)
	}
}

func TestResultCacheExpiry(t *testing.T) {
	clk := newClock()
	c := NewResultCache(NewMemoryStoreWithClock(clk.Now), time.Hour)
	ctx := context.Background()
	_ = c.Put(ctx, "k", sampleSet(clk.Now()))

	clk.Advance(59 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected entry before TTL")
	}

	clk.Advance(time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire at TTL")
	}
}

func TestResultCacheReplace(t *testing.T) {
	clk := newClock()
	c := NewResultCache(NewMemoryStoreWithClock(clk.Now), time.Hour)
	ctx := context.Background()
	base := sampleSet(clk.Now())
	_ = c.Put(ctx, "k", base)

	enriched := base.Clone()
	at := clk.Now().Add(time.Minute)
	enriched.EnrichedAt = &at

	ok, err := c.Replace(ctx, "k", base.Timestamp, enriched)
	if err != nil || !ok {
		t.Fatalf("expected replace to succeed, ok=%v err=%v", ok, err)
	}
	got, _, _ := c.Get(ctx, "k")
	if got.EnrichedAt == nil {
		t.Fatalf("enriched set not stored")
	}

	// A newer search superseded the entry.
	clk.Advance(time.Minute)
	newer := sampleSet(clk.Now())
	_ = c.Put(ctx, "k", newer)
	if ok, _ := c.Replace(ctx, "k", base.Timestamp, enriched); ok {
		t.Fatalf("stale enrichment overwrote a newer result")
	}

	// Expired entries are not resurrected.
	clk.Advance(2 * time.Hour)
	if ok, _ := c.Replace(ctx, "k", newer.Timestamp, enriched); ok {
		t.Fatalf("enrichment resurrected an expired entry")
	}
}

func TestResultCacheUnreadableEntryIsMiss(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, "k", "not json", time.Hour)

	if _, ok, err := NewResultCache(store, 0).Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected silent miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	clk := newClock()
	s := NewMemoryStoreWithClock(clk.Now)
	ctx := context.Background()
	_ = s.Put(ctx, "short", "a", time.Minute)
	_ = s.Put(ctx, "long", "b", time.Hour)

	clk.Advance(2 * time.Minute)
	n, err := s.PurgeExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 purged, got %d (%v)", n, err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", s.Len())
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.redfin.com/zipcode/78704", "https://www.redfin.com/zipcode/78704"},
		{"HTTPS://WWW.Redfin.com/zipcode/78704/", "https://www.redfin.com/zipcode/78704"},
		{"https://www.redfin.com/zipcode/78704?b=2&a=1#map", "https://www.redfin.com/zipcode/78704?a=1&b=2"},
		{"  https://www.redfin.com/zipcode/78704/filter/min-beds=3  ", "https://www.redfin.com/zipcode/78704/filter/min-beds=3"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
