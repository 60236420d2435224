package enrich

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"rentalscout/internal/airdna"
	"rentalscout/internal/browser/browsertest"
	"rentalscout/internal/cache"
	"rentalscout/internal/finance"
	"rentalscout/internal/models"
	"rentalscout/internal/retry"
)

const (
	loginURL = "https://auth.test/login"
	key      = "https://www.redfin.com/zipcode/78704"
)

const loginForm = `<html><body><form>
	<input id="loginId"><input id="password"><button id="submit-button">Log in</button>
</form></body></html>`

const rentalizerPage = `<html><body>
	<h3 class="MuiTypography-root MuiTypography-titleM css-sd2qa2">$24K</h3>
	<p class="MuiTypography-root MuiTypography-body1 css-kk2mec">68%</p>
	<div><span>Revenue</span><h4>$48K</h4></div>
</body></html>`

type harness struct {
	page     *browsertest.Page
	launcher *browsertest.Launcher
	fetcher  *airdna.Fetcher
	cache    *cache.ResultCache
	recorder *recorder
	orch     *Orchestrator
}

type recorder struct {
	mu      sync.Mutex
	reports []models.EnrichmentReport
}

func (r *recorder) RecordRun(ctx context.Context, rep models.EnrichmentReport) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
	return int64(len(r.reports)), nil
}

func (r *recorder) last() models.EnrichmentReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports[len(r.reports)-1]
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	p := browsertest.NewPage()
	p.Routes[loginURL] = loginForm
	p.ClickRoutes["#submit-button"] = "https://app.airdna.co/data"

	h := &harness{
		page:     p,
		launcher: browsertest.NewLauncher(p),
		fetcher:  airdna.NewFetcher(airdna.FetcherOptions{Policy: retry.Policy{MaxAttempts: 1}}),
		cache:    cache.NewResultCache(cache.NewMemoryStore(), time.Hour),
		recorder: &recorder{},
	}
	opts.Persist = true
	h.orch = New(Config{
		Launcher:    h.launcher,
		Credentials: airdna.Credentials{Email: "host@example.com", Password: "pw"},
		AuthOptions: airdna.AuthOptions{LoginURL: loginURL},
		Fetcher:     h.fetcher,
		Estimator:   finance.DefaultMortgage(),
		Cache:       h.cache,
		Recorder:    h.recorder,
		Options:     opts,
	})
	return h
}

func (h *harness) serve(l models.Listing, html string) {
	h.page.Routes[h.fetcher.RentalizerURL(airdna.Query{Address: l.Address, Beds: l.Beds, Baths: l.Baths})] = html
}

func (h *harness) delay(l models.Listing, d time.Duration) {
	h.page.Delays[h.fetcher.RentalizerURL(airdna.Query{Address: l.Address, Beds: l.Beds, Baths: l.Baths})] = d
}

func listings() []models.Listing {
	return []models.Listing{
		{Address: "1 First St", Price: 300000, Beds: 3, Baths: 2},
		{Address: "2 Second St", Price: 450000, Beds: 4, Baths: 3},
	}
}

func baseSet(ls []models.Listing) *models.SearchResultSet {
	return models.NewSearchResultSet(key, ls, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}

func TestEnrichAndStoreWritesEnrichedSet(t *testing.T) {
	h := newHarness(t, Options{})
	ls := listings()
	for _, l := range ls {
		h.serve(l, rentalizerPage)
	}
	base := baseSet(ls)
	ctx := context.Background()
	_ = h.cache.Put(ctx, key, base)

	if err := h.orch.EnrichAndStore(ctx, key, base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, _ := h.cache.Get(ctx, key)
	if !ok || got.EnrichedAt == nil {
		t.Fatalf("enriched set not written back: %+v", got)
	}
	for _, l := range got.Listings {
		if l.MonthlyCost == nil || l.MonthlyRent == nil || l.ROI == nil || l.CashFlow == nil {
			t.Fatalf("listing not fully enriched: %+v", l)
		}
		if *l.MonthlyRent != 4000 || *l.AirDnaNOI != 24000 || *l.OccupancyRate != 68 {
			t.Fatalf("unexpected financials: %+v", l)
		}
	}
	if base.Listings[0].MonthlyCost != nil {
		t.Fatalf("input set was modified")
	}
	if h.launcher.Open() != 0 {
		t.Fatalf("analytics session left open")
	}

	rep := h.recorder.last()
	if rep.Key != key || rep.Attempted != 2 || rep.Enriched != 2 || !rep.Stored {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestAuthFailureLeavesListingsUnmodified(t *testing.T) {
	h := newHarness(t, Options{})
	h.page.Routes[loginURL] = `<html><body><p>Service unavailable</p></body></html>`
	ls := listings()
	base := baseSet(ls)
	ctx := context.Background()
	_ = h.cache.Put(ctx, key, base)

	err := h.orch.EnrichAndStore(ctx, key, base)
	if !errors.Is(err, airdna.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}

	got, _, _ := h.cache.Get(ctx, key)
	if !reflect.DeepEqual(got, base) {
		t.Fatalf("cache entry changed after auth failure")
	}
	if rep := h.recorder.last(); rep.Error == "" || rep.Stored {
		t.Fatalf("expected failed, unstored report: %+v", rep)
	}

	set, _, err := h.orch.Enrich(ctx, base)
	if err == nil || !reflect.DeepEqual(set, base) {
		t.Fatalf("expected unenriched copy with error")
	}
}

func TestListingTimeoutDoesNotBlockLaterListings(t *testing.T) {
	h := newHarness(t, Options{ListingTimeout: 100 * time.Millisecond})
	ls := listings()
	h.serve(ls[0], rentalizerPage)
	h.delay(ls[0], 5*time.Second)
	h.serve(ls[1], rentalizerPage)

	start := time.Now()
	set, rep, err := h.orch.Enrich(context.Background(), baseSet(ls))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("slow listing blocked the run for %v", elapsed)
	}

	slow, fast := set.Listings[0], set.Listings[1]
	if slow.MonthlyCost == nil || slow.MonthlyRent != nil || slow.ROI != nil {
		t.Fatalf("timed-out listing should only carry its cost: %+v", slow)
	}
	if fast.ROI == nil {
		t.Fatalf("later listing was not enriched: %+v", fast)
	}
	if rep.Failed != 1 || rep.Enriched != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestEnrichmentIsAdditive(t *testing.T) {
	h := newHarness(t, Options{})
	rent, noi := 2500.0, 18000.0
	l := models.Listing{Address: "3 Third St", Price: 250000, Beds: 2, Baths: 1, MonthlyRent: &rent, AirDnaNOI: &noi}
	// Headline only: no revenue or occupancy on the page.
	h.serve(l, `<html><body><h3 class="MuiTypography-root MuiTypography-titleM css-sd2qa2">$0</h3></body></html>`)

	set, _, err := h.orch.Enrich(context.Background(), baseSet([]models.Listing{l}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := set.Listings[0]
	if got.MonthlyRent == nil || *got.MonthlyRent != 2500 || got.AirDnaNOI == nil || *got.AirDnaNOI != 18000 {
		t.Fatalf("existing values were cleared: %+v", got)
	}
	if got.MonthlyCost == nil || got.ROI == nil {
		t.Fatalf("expected cost and ROI from existing rent: %+v", got)
	}
}

func TestSupersededResultIsDropped(t *testing.T) {
	h := newHarness(t, Options{})
	ls := listings()
	for _, l := range ls {
		h.serve(l, rentalizerPage)
	}
	ctx := context.Background()
	base := baseSet(ls)
	newer := models.NewSearchResultSet(key, ls, base.Timestamp.Add(time.Minute))
	_ = h.cache.Put(ctx, key, newer)

	if err := h.orch.EnrichAndStore(ctx, key, base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _, _ := h.cache.Get(ctx, key)
	if got.EnrichedAt != nil || !got.Timestamp.Equal(newer.Timestamp) {
		t.Fatalf("stale enrichment overwrote the newer result")
	}
	if h.recorder.last().Stored {
		t.Fatalf("report claims a dropped write was stored")
	}
}

func TestMaxListingsCapsRun(t *testing.T) {
	h := newHarness(t, Options{MaxListings: 1})
	ls := listings()
	for _, l := range ls {
		h.serve(l, rentalizerPage)
	}

	set, rep, err := h.orch.Enrich(context.Background(), baseSet(ls))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Attempted != 1 || rep.Total != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if set.Listings[1].MonthlyCost != nil {
		t.Fatalf("listing past the cap was enriched")
	}
}

func TestEnrichEmptySetSkipsBrowser(t *testing.T) {
	h := newHarness(t, Options{})
	_, rep, err := h.orch.Enrich(context.Background(), baseSet(nil))
	if err != nil || rep.Attempted != 0 {
		t.Fatalf("unexpected result: %+v %v", rep, err)
	}
	if len(h.launcher.Sessions) != 0 {
		t.Fatalf("empty set launched a browser")
	}
}

func TestFetchOne(t *testing.T) {
	h := newHarness(t, Options{})
	l := models.Listing{Address: "9 Elm St", Beds: 2, Baths: 1}
	h.serve(l, rentalizerPage)

	fin, err := h.orch.FetchOne(context.Background(), l.Address, l.Beds, l.Baths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fin.NetOperatingIncome != 24000 || fin.MonthlyRent != 4000 {
		t.Fatalf("unexpected financials: %+v", fin)
	}

	_, err = h.orch.FetchOne(context.Background(), "404 Nowhere", 1, 1)
	if !errors.Is(err, airdna.ErrMetricsMissing) {
		t.Fatalf("expected ErrMetricsMissing, got %v", err)
	}
}

func TestFetchOneEmptyMetricsIsMissing(t *testing.T) {
	h := newHarness(t, Options{})
	l := models.Listing{Address: "3 Blank Rd", Beds: 2, Baths: 1}
	h.serve(l, `<html><body>
	<h3 class="MuiTypography-root MuiTypography-titleM css-sd2qa2">--</h3>
	<p class="MuiTypography-root MuiTypography-body1 css-kk2mec">--</p>
</body></html>`)

	fin, err := h.orch.FetchOne(context.Background(), l.Address, l.Beds, l.Baths)
	if !errors.Is(err, airdna.ErrMetricsMissing) {
		t.Fatalf("expected ErrMetricsMissing, got %+v %v", fin, err)
	}
}

func TestFetchOneWithoutCredentialsSkipsBrowser(t *testing.T) {
	h := newHarness(t, Options{})
	h.orch.creds = airdna.Credentials{}

	_, err := h.orch.FetchOne(context.Background(), "9 Elm St", 2, 1)
	var authErr *airdna.AuthError
	if !errors.As(err, &authErr) || authErr.Step != "credentials" || !errors.Is(err, airdna.ErrAuthFailed) {
		t.Fatalf("expected credentials AuthError, got %v", err)
	}
	if len(h.launcher.Sessions) != 0 {
		t.Fatalf("browser launched without credentials")
	}
}

func TestWithDeadline(t *testing.T) {
	v, err := withDeadline(context.Background(), time.Second, func(ctx context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("unexpected result: %d %v", v, err)
	}

	_, err = withDeadline(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		time.Sleep(time.Second)
		return 0, nil
	})
	if !errors.Is(err, ErrStepTimeout) {
		t.Fatalf("expected ErrStepTimeout, got %v", err)
	}

	_, err = withDeadline(context.Background(), time.Second, func(ctx context.Context) (int, error) { panic("boom") })
	if err == nil {
		t.Fatalf("expected panic to surface as error")
	}
}
