package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"rentalscout/internal/browser"
	"rentalscout/internal/models"
	"rentalscout/internal/retry"
)

// Scraper runs one listing search per browser session.
type Scraper struct {
	launcher   browser.Launcher
	extractor  *Extractor
	policy     retry.Policy
	navTimeout time.Duration
	now        func() time.Time
}

// New creates a Scraper.
func New(launcher browser.Launcher, extractor *Extractor, policy retry.Policy, navTimeout time.Duration) *Scraper {
	if navTimeout <= 0 {
		navTimeout = 60 * time.Second
	}
	return &Scraper{
		launcher:   launcher,
		extractor:  extractor,
		policy:     policy,
		navTimeout: navTimeout,
		now:        time.Now,
	}
}

// Search opens its own session, loads searchURL and extracts the listings on it.
// The session is closed before Search returns.
func (s *Scraper) Search(ctx context.Context, searchURL string) (*models.SearchResultSet, error) {
	log.Printf("🔍 [scraper] searching with URL: %s", searchURL)
	started := s.now()

	var listings []models.Listing
	err := browser.WithSession(ctx, s.launcher, func(sess browser.Session) error {
		return browser.WithPage(ctx, sess, func(page browser.Page) error {
			if err := browser.Navigate(ctx, page, searchURL, s.policy, s.navTimeout); err != nil {
				return err
			}

			var err error
			listings, err = s.extractor.Extract(ctx, page)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", searchURL, err)
	}

	log.Printf("✅ [scraper] %d listings in %v", len(listings), s.now().Sub(started).Round(time.Millisecond))
	return models.NewSearchResultSet(searchURL, listings, s.now()), nil
}
