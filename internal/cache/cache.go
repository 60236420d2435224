// Package cache stores search results between requests.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"rentalscout/internal/models"
)

// DefaultTTL is how long a search result stays servable.
const DefaultTTL = time.Hour

// ResultCache stores SearchResultSets as JSON under normalized search URLs.
type ResultCache struct {
	store Store
	ttl   time.Duration

	// serializes compare-and-replace against this process's writers
	mu sync.Mutex
}

// NewResultCache wraps store. A non-positive ttl uses DefaultTTL.
func NewResultCache(store Store, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{store: store, ttl: ttl}
}

// TTL returns the entry lifetime.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Store returns the underlying store.
func (c *ResultCache) Store() Store {
	return c.store
}

// Get returns the cached set for key. A missing, expired or unreadable entry is a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*models.SearchResultSet, bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	var set models.SearchResultSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		log.Printf("⚠️  [cache] dropping unreadable entry %s: %v", key, err)
		return nil, false, nil
	}
	return &set, true, nil
}

// Put stores set under key with the cache TTL. Last write wins.
func (c *ResultCache) Put(ctx context.Context, key string, set *models.SearchResultSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.put(ctx, key, set)
}

// Replace stores set only if the entry under key still holds the result stamped base.
// It reports whether the write happened; an expired or newer entry is left alone.
func (c *ResultCache) Replace(ctx context.Context, key string, base time.Time, set *models.SearchResultSet) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || !current.Timestamp.Equal(base) {
		return false, nil
	}
	if err := c.put(ctx, key, set); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ResultCache) put(ctx context.Context, key string, set *models.SearchResultSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode result set: %w", err)
	}
	if err := c.store.Put(ctx, key, string(data), c.ttl); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	log.Printf("💾 [cache] stored %d listings under %s", set.TotalListings, key)
	return nil
}

// NormalizeKey canonicalizes a search URL so equivalent searches share an entry:
// scheme and host are lower-cased, the trailing slash and fragment are dropped and
// query parameters are sorted.
func NormalizeKey(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode()
	}
	return u.String()
}
