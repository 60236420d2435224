package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentalscout/internal/browser"
	"rentalscout/internal/browser/browsertest"
	"rentalscout/internal/retry"
)

const searchURL = "https://www.redfin.com/zipcode/78704"

func newTestScraper(page *browsertest.Page) (*Scraper, *browsertest.Launcher) {
	l := browsertest.NewLauncher(page)
	ex := NewExtractor(DefaultSelectors(), DefaultBaseURL, 50*time.Millisecond)
	return New(l, ex, retry.Policy{MaxAttempts: 3}, time.Second), l
}

func TestSearchReturnsListingsAndClosesSession(t *testing.T) {
	p := browsertest.NewPage()
	p.Routes[searchURL] = page(
		card("1 First St", "$100,000", "2", "1", "900"),
		card("2 Second St", "$200,000", "3", "2", "1,200"),
	)
	s, l := newTestScraper(p)

	set, err := s.Search(context.Background(), searchURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.TotalListings != 2 || set.Source != searchURL || set.Timestamp.IsZero() {
		t.Fatalf("unexpected result set: %+v", set)
	}
	if l.Open() != 0 || !p.Closed() {
		t.Fatalf("session or page left open")
	}
}

func TestSearchNoResultsIsEmptyNotError(t *testing.T) {
	p := browsertest.NewPage()
	p.Routes[searchURL] = `<html><body><div class="no-results-message">No matches</div></body></html>`
	s, _ := newTestScraper(p)

	set, err := s.Search(context.Background(), searchURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.TotalListings != 0 || len(set.Listings) != 0 || set.Message == "" {
		t.Fatalf("expected empty set with message, got %+v", set)
	}
}

func TestSearchExtractionTimeoutIsHardFailure(t *testing.T) {
	p := browsertest.NewPage()
	p.Routes[searchURL] = `<html><body><div class="spinner"></div></body></html>`
	s, l := newTestScraper(p)

	_, err := s.Search(context.Background(), searchURL)
	if !errors.Is(err, ErrResultsTimeout) {
		t.Fatalf("expected ErrResultsTimeout, got %v", err)
	}
	if len(p.Navigations) != 1 {
		t.Fatalf("extraction timeout must not be retried, navigated %d times", len(p.Navigations))
	}
	if l.Open() != 0 {
		t.Fatalf("session left open after failure")
	}
}

func TestSearchBlockedPage(t *testing.T) {
	p := browsertest.NewPage()
	p.Redirects[searchURL] = "https://www.redfin.com/captcha"
	s, l := newTestScraper(p)

	_, err := s.Search(context.Background(), searchURL)
	if !errors.Is(err, browser.ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if l.Open() != 0 {
		t.Fatalf("session left open after block")
	}
}

func TestSearchLaunchFailure(t *testing.T) {
	l := &browsertest.Launcher{Err: errors.New("chromium missing")}
	s := New(l, NewExtractor(DefaultSelectors(), "", 0), retry.Policy{}, 0)

	_, err := s.Search(context.Background(), searchURL)
	if !errors.Is(err, browser.ErrLaunch) {
		t.Fatalf("expected ErrLaunch, got %v", err)
	}
}

func TestBuildSearchURL(t *testing.T) {
	cases := []struct {
		name    string
		filters Filters
		want    string
	}{
		{"bare", Filters{}, "https://www.redfin.com/zipcode/78704"},
		{"prices", Filters{MinPrice: 250000, MaxPrice: 600000}, "https://www.redfin.com/zipcode/78704/filter/min-price=250k,max-price=600k"},
		{"prices under a thousand", Filters{MinPrice: 500, MaxPrice: 999}, "https://www.redfin.com/zipcode/78704"},
		{"all", Filters{MinPrice: 100000, MaxPrice: 900000, MinBeds: 3, MaxHOA: 300, Features: []string{"pool", " lake view ", ""}},
			"https://www.redfin.com/zipcode/78704/filter/min-price=100k,max-price=900k,min-beds=3,remarks=pool,lake+view,hoa=300"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildSearchURL("", "78704", tc.filters); got != tc.want {
				t.Fatalf("got %s\nwant %s", got, tc.want)
			}
		})
	}
}
