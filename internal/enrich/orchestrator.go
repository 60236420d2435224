// Package enrich adds cost and rental projections to scraped listings in the background.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"rentalscout/internal/airdna"
	"rentalscout/internal/browser"
	"rentalscout/internal/cache"
	"rentalscout/internal/finance"
	"rentalscout/internal/models"
)

// ErrStepTimeout is returned when a per-listing step runs past its budget.
var ErrStepTimeout = errors.New("enrichment step timed out")

// Options tunes a run.
type Options struct {
	ListingTimeout time.Duration // budget for one financial fetch
	CostTimeout    time.Duration // budget for one cost estimate
	MaxListings    int           // 0 enriches every listing
	FetchInterval  time.Duration // minimum spacing between fetches
	Persist        bool          // record run reports
}

// DefaultOptions returns the production budgets.
func DefaultOptions() Options {
	return Options{
		ListingTimeout: 30 * time.Second,
		CostTimeout:    10 * time.Second,
		FetchInterval:  2 * time.Second,
		Persist:        true,
	}
}

// RunRecorder stores finished run reports.
type RunRecorder interface {
	RecordRun(ctx context.Context, r models.EnrichmentReport) (int64, error)
}

// Orchestrator runs enrichment over one result set at a time, on its own browser session.
type Orchestrator struct {
	launcher  browser.Launcher
	creds     airdna.Credentials
	authOpts  airdna.AuthOptions
	fetcher   *airdna.Fetcher
	estimator finance.Estimator
	cache     *cache.ResultCache
	recorder  RunRecorder
	opts      Options
	limiter   *rate.Limiter
	now       func() time.Time
}

// Config groups the Orchestrator's collaborators.
type Config struct {
	Launcher    browser.Launcher
	Credentials airdna.Credentials
	AuthOptions airdna.AuthOptions
	Fetcher     *airdna.Fetcher
	Estimator   finance.Estimator
	Cache       *cache.ResultCache
	Recorder    RunRecorder // optional
	Options     Options
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	opts := cfg.Options
	def := DefaultOptions()
	if opts.ListingTimeout <= 0 {
		opts.ListingTimeout = def.ListingTimeout
	}
	if opts.CostTimeout <= 0 {
		opts.CostTimeout = def.CostTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.FetchInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.FetchInterval), 1)
	}

	estimator := cfg.Estimator
	if estimator == nil {
		estimator = finance.DefaultMortgage()
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = airdna.NewFetcher(airdna.FetcherOptions{})
	}

	return &Orchestrator{
		launcher:  cfg.Launcher,
		creds:     cfg.Credentials,
		authOpts:  cfg.AuthOptions,
		fetcher:   fetcher,
		estimator: estimator,
		cache:     cfg.Cache,
		recorder:  cfg.Recorder,
		opts:      opts,
		limiter:   limiter,
		now:       time.Now,
	}
}

// Enrich returns an enriched copy of set; set itself is never modified. On an
// authentication failure the copy is returned unenriched together with the error.
func (o *Orchestrator) Enrich(ctx context.Context, set *models.SearchResultSet) (*models.SearchResultSet, models.EnrichmentReport, error) {
	out := set.Clone()
	report := models.EnrichmentReport{StartedAt: o.now(), Total: len(out.Listings)}
	if len(out.Listings) == 0 {
		report.FinishedAt = o.now()
		return out, report, nil
	}

	if err := o.creds.Check(); err != nil {
		report.FinishedAt = o.now()
		return out, report, fmt.Errorf("enrichment aborted: %w", err)
	}

	limit := len(out.Listings)
	if o.opts.MaxListings > 0 && o.opts.MaxListings < limit {
		limit = o.opts.MaxListings
		log.Printf("⚠️  [enrich] capping run at %d of %d listings", limit, len(out.Listings))
	}

	err := browser.WithSession(ctx, o.launcher, func(sess browser.Session) error {
		return browser.WithPage(ctx, sess, func(page browser.Page) error {
			auth := airdna.NewAuthenticator(o.creds, o.authOpts)
			if err := auth.Login(ctx, page); err != nil {
				return err
			}

			for i := 0; i < limit; i++ {
				if err := o.limiter.Wait(ctx); err != nil {
					return err
				}
				report.Attempted++
				if o.enrichListing(ctx, page, &out.Listings[i]) {
					report.Enriched++
				} else {
					report.Failed++
				}
			}
			return nil
		})
	})

	report.FinishedAt = o.now()
	if err != nil {
		return out, report, fmt.Errorf("enrichment aborted: %w", err)
	}
	log.Printf("✅ [enrich] enriched %d/%d listings in %v", report.Enriched, report.Attempted,
		report.Duration().Round(time.Millisecond))
	return out, report, nil
}

// enrichListing runs the cost and financial steps for one listing, each under its own
// deadline. It reports whether financial data was merged.
func (o *Orchestrator) enrichListing(ctx context.Context, page browser.Page, l *models.Listing) bool {
	snapshot := l.Clone()
	cost, err := withDeadline(ctx, o.opts.CostTimeout, func(ctx context.Context) (float64, error) {
		return o.estimator.Estimate(ctx, snapshot)
	})
	if err != nil {
		log.Printf("⚠️  [enrich] cost estimate for %s: %v", l.Address, err)
	} else {
		l.ApplyCost(cost)
	}

	q := airdna.Query{Address: l.Address, Beds: l.Beds, Baths: l.Baths}
	fin, err := withDeadline(ctx, o.opts.ListingTimeout, func(ctx context.Context) (models.Financials, error) {
		return o.fetcher.Fetch(ctx, page, q)
	})
	if err != nil {
		log.Printf("⚠️  [enrich] financials for %s: %v", l.Address, err)
		return false
	}
	if fin.IsEmpty() {
		log.Printf("⚠️  [enrich] no financial data for %s", l.Address)
		return false
	}
	l.ApplyFinancials(fin)
	return true
}

// EnrichAndStore enriches set and writes the result back under key, but only while the
// cache still holds the same base result. Errors are returned for logging only.
func (o *Orchestrator) EnrichAndStore(ctx context.Context, key string, set *models.SearchResultSet) error {
	enriched, report, err := o.Enrich(ctx, set)
	report.Key = key
	defer func() { o.record(report) }()

	if err != nil {
		report.Error = err.Error()
		return err
	}
	if report.Attempted == 0 {
		return nil
	}

	at := o.now().UTC()
	enriched.EnrichedAt = &at
	stored, err := o.cache.Replace(ctx, key, set.Timestamp, enriched)
	if err != nil {
		report.Error = err.Error()
		return err
	}
	report.Stored = stored
	if !stored {
		log.Printf("⚠️  [enrich] dropped result for %s: cache entry expired or superseded", key)
	}
	return nil
}

func (o *Orchestrator) record(report models.EnrichmentReport) {
	if !o.opts.Persist || o.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := o.recorder.RecordRun(ctx, report); err != nil {
		log.Printf("⚠️  [enrich] failed to record run: %v", err)
	}
}

// FetchOne looks up a single property on a fresh, separately authenticated session.
func (o *Orchestrator) FetchOne(ctx context.Context, address string, beds, baths float64) (models.Financials, error) {
	var fin models.Financials
	if err := o.creds.Check(); err != nil {
		return fin, err
	}
	err := browser.WithSession(ctx, o.launcher, func(sess browser.Session) error {
		return browser.WithPage(ctx, sess, func(page browser.Page) error {
			if err := airdna.NewAuthenticator(o.creds, o.authOpts).Login(ctx, page); err != nil {
				return err
			}
			var err error
			fin, err = withDeadline(ctx, o.opts.ListingTimeout, func(ctx context.Context) (models.Financials, error) {
				return o.fetcher.Fetch(ctx, page, airdna.Query{Address: address, Beds: beds, Baths: baths})
			})
			if err == nil && fin.IsEmpty() {
				return fmt.Errorf("%w for %q: every metric was empty", airdna.ErrMetricsMissing, address)
			}
			return err
		})
	})
	return fin, err
}

// withDeadline runs fn with its own timeout and returns as soon as either fn finishes or
// the timeout fires. An abandoned fn keeps its cancelled context.
func withDeadline[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w after %v: %v", ErrStepTimeout, d, ctx.Err())
	}
}
