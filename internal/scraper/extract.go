package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentalscout/internal/browser"
	"rentalscout/internal/models"
)

// ErrResultsTimeout means neither results nor the no-results marker showed up in time.
var ErrResultsTimeout = errors.New("timed out waiting for search results")

// Extractor reads listings from an already navigated search page.
type Extractor struct {
	selectors Selectors
	baseURL   string
	timeout   time.Duration
}

// NewExtractor creates an extractor. A zero timeout means 30 seconds.
func NewExtractor(sel Selectors, baseURL string, timeout time.Duration) *Extractor {
	if len(sel.Strategies) == 0 {
		sel = DefaultSelectors()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{selectors: sel, baseURL: baseURL, timeout: timeout}
}

// Extract waits for either result cards or the no-results marker, whichever comes
// first, then parses a snapshot of the DOM.
func (e *Extractor) Extract(ctx context.Context, page browser.Page) ([]models.Listing, error) {
	waitCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	branch, err := page.WaitAny(waitCtx, e.selectors.ResultsSelector(), e.selectors.NoResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResultsTimeout, err)
	}
	if branch == 1 {
		return []models.Listing{}, nil
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page HTML: %w", err)
	}
	return ParseListings(html, e.baseURL, e.selectors)
}
