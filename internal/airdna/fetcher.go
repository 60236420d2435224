package airdna

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rentalscout/internal/browser"
	"rentalscout/internal/models"
	"rentalscout/internal/retry"
)

// ErrMetricsMissing means the Rentalizer headline never rendered for a property.
var ErrMetricsMissing = errors.New("rentalizer metrics not available")

// DefaultBaseURL is the AirDNA data app.
const DefaultBaseURL = "https://app.airdna.co"

// Query describes the property to project.
type Query struct {
	Address string
	Beds    float64
	Baths   float64
}

// FetcherOptions configures a Fetcher. Zero values take the defaults.
type FetcherOptions struct {
	BaseURL     string
	Selectors   Selectors
	Policy      retry.Policy
	NavTimeout  time.Duration
	WaitTimeout time.Duration
}

// Fetcher reads Rentalizer projections on an authenticated page.
type Fetcher struct {
	baseURL     string
	sel         Selectors
	policy      retry.Policy
	navTimeout  time.Duration
	waitTimeout time.Duration
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	f := &Fetcher{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		sel:         opts.Selectors,
		policy:      opts.Policy,
		navTimeout:  opts.NavTimeout,
		waitTimeout: opts.WaitTimeout,
	}
	if f.baseURL == "" {
		f.baseURL = DefaultBaseURL
	}
	if f.sel.Headline == "" {
		f.sel = DefaultSelectors()
	}
	if f.navTimeout <= 0 {
		f.navTimeout = 30 * time.Second
	}
	if f.waitTimeout <= 0 {
		f.waitTimeout = 15 * time.Second
	}
	return f
}

// RentalizerURL builds the projection URL for q. Bathrooms default to 1 and the guest
// count is two per bedroom, never fewer than two.
func (f *Fetcher) RentalizerURL(q Query) string {
	baths := q.Baths
	if baths <= 0 {
		baths = 1
	}
	accommodates := int(math.Max(2, math.Ceil(q.Beds)*2))

	v := url.Values{}
	v.Set("address", q.Address)
	v.Set("bedrooms", strconv.FormatFloat(q.Beds, 'f', -1, 64))
	v.Set("bathrooms", strconv.FormatFloat(baths, 'f', -1, 64))
	v.Set("accommodates", strconv.Itoa(accommodates))
	return f.baseURL + "/data/rentalizer?" + v.Encode()
}

// Fetch loads the projection for q on page. The page must already be authenticated.
func (f *Fetcher) Fetch(ctx context.Context, page browser.Page, q Query) (models.Financials, error) {
	if strings.TrimSpace(q.Address) == "" {
		return models.Financials{}, errors.New("address is required")
	}

	target := f.RentalizerURL(q)
	if err := browser.Navigate(ctx, page, target, f.policy, f.navTimeout); err != nil {
		return models.Financials{}, fmt.Errorf("rentalizer %q: %w", q.Address, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, f.waitTimeout)
	defer cancel()
	if err := page.WaitFor(waitCtx, f.sel.Headline, false); err != nil {
		if ctx.Err() != nil {
			return models.Financials{}, ctx.Err()
		}
		return models.Financials{}, fmt.Errorf("%w for %q: %v", ErrMetricsMissing, q.Address, err)
	}

	html, err := page.HTML()
	if err != nil {
		return models.Financials{}, fmt.Errorf("failed to read rentalizer page: %w", err)
	}
	fin, err := ParseFinancials(html, f.sel)
	if err != nil {
		return models.Financials{}, err
	}

	log.Printf("📊 [airdna] %s: noi=%.0f occupancy=%.1f%% rent=%.0f",
		q.Address, fin.NetOperatingIncome, fin.OccupancyRate, fin.MonthlyRent)
	return fin, nil
}
