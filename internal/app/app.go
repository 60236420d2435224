// Package app assembles the service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/time/rate"

	"rentalscout/internal/airdna"
	"rentalscout/internal/browser"
	"rentalscout/internal/cache"
	"rentalscout/internal/config"
	"rentalscout/internal/database"
	"rentalscout/internal/enrich"
	"rentalscout/internal/finance"
	"rentalscout/internal/handlers"
	"rentalscout/internal/middleware"
	"rentalscout/internal/retry"
	"rentalscout/internal/scraper"
	"rentalscout/internal/zipcode"
)

// App holds the wired components. Queue, Resolver and DB are nil when their
// configuration is missing.
type App struct {
	Config       *config.Config
	Launcher     browser.Launcher
	Scraper      *scraper.Scraper
	Cache        *cache.ResultCache
	Orchestrator *enrich.Orchestrator
	Queue        *enrich.Queue
	Resolver     zipcode.Resolver
	Estimator    finance.MortgageEstimator
	Handler      *handlers.Handler
	Limiter      *middleware.RateLimiter
	DB           *database.Database
}

// Build wires every component described by cfg.
func Build(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	a.Launcher = browser.NewRodLauncher(browser.RodOptions{
		Headless:   cfg.Headless,
		ChromeBin:  cfg.ChromeBin,
		ControlURL: cfg.BrowserControlURL,
		UserAgent:  cfg.UserAgent,
	})

	sel := scraper.DefaultSelectors()
	if cfg.SelectorsFile != "" {
		loaded, err := scraper.LoadSelectors(cfg.SelectorsFile)
		if err != nil {
			return nil, err
		}
		sel = loaded
		log.Printf("📋 [app] Loaded %d selector strategies from %s", len(sel.Strategies), cfg.SelectorsFile)
	}

	policy := retry.Policy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Jitter:      cfg.RetryJitter,
	}

	extractor := scraper.NewExtractor(sel, scraper.DefaultBaseURL, cfg.ExtractionTimeout)
	a.Scraper = scraper.New(a.Launcher, extractor, policy, cfg.NavigationTimeout)

	var store cache.Store
	if cfg.CacheDBPath != "" {
		db, err := database.NewDatabase(cfg.CacheDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		a.DB = db
		store = db
		log.Printf("🗃️  [app] Using SQLite cache at %s", cfg.CacheDBPath)
	} else {
		store = cache.NewMemoryStore()
		log.Println("🧠 [app] Using in-memory cache")
	}
	a.Cache = cache.NewResultCache(store, cfg.CacheTTL)

	a.Estimator = finance.MortgageEstimator{
		DownPayment:   cfg.MortgageDownPayment,
		AnnualRate:    cfg.MortgageRate,
		TermYears:     cfg.MortgageTermYears,
		PropertyTax:   cfg.MortgageTaxRate,
		InsuranceRate: cfg.MortgageInsurance,
	}

	orchCfg := enrich.Config{
		Launcher:    a.Launcher,
		Credentials: airdna.Credentials{Email: cfg.AirDNAEmail, Password: cfg.AirDNAPassword},
		AuthOptions: airdna.AuthOptions{NavTimeout: cfg.NavigationTimeout},
		Fetcher: airdna.NewFetcher(airdna.FetcherOptions{
			Policy:     policy,
			NavTimeout: cfg.NavigationTimeout,
		}),
		Estimator: a.Estimator,
		Cache:     a.Cache,
		Options: enrich.Options{
			ListingTimeout: cfg.EnrichListingTimeout,
			CostTimeout:    cfg.EnrichCostTimeout,
			MaxListings:    cfg.EnrichMaxListings,
			FetchInterval:  cfg.EnrichFetchInterval,
			Persist:        cfg.EnrichPersist,
		},
	}
	if a.DB != nil {
		orchCfg.Recorder = a.DB
	}
	a.Orchestrator = enrich.New(orchCfg)

	if cfg.HasAirDNACredentials() {
		orch := a.Orchestrator
		a.Queue = enrich.NewQueue(func(ctx context.Context, job enrich.Job) error {
			return orch.EnrichAndStore(ctx, job.Key, job.Set)
		}, enrich.QueueOptions{
			Size:    cfg.EnrichQueueSize,
			Workers: cfg.EnrichWorkers,
		})
	} else {
		log.Println("⚠️  [app] AIRDNA_EMAIL/AIRDNA_PASSWORD not set, background enrichment disabled")
	}

	if cfg.ZipcodeLLMURL != "" {
		a.Resolver = zipcode.NewLLMResolver(cfg.ZipcodeLLMURL, cfg.ZipcodeLLMKey, cfg.ZipcodeLLMModel)
	}

	if cfg.RateLimitRPS > 0 {
		a.Limiter = middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	deps := handlers.Deps{
		Searcher:   a.Scraper,
		Cache:      a.Cache,
		Financials: a.Orchestrator,
		Resolver:   a.Resolver,
		Estimator:  a.Estimator,
	}
	// Interface fields stay nil rather than holding typed nil pointers.
	if a.Queue != nil {
		deps.Queue = a.Queue
	}
	if a.DB != nil {
		deps.Runs = a.DB
	}
	a.Handler = handlers.NewHandler(deps)

	return a, nil
}

// RouteOptions returns the route protection settings for RegisterRoutes.
func (a *App) RouteOptions() handlers.RouteOptions {
	return handlers.RouteOptions{
		AdminKeyHash: a.Config.AdminKeyHash,
		Limiter:      a.Limiter,
	}
}

// Shutdown drains the enrichment queue and releases resources. Jobs still running
// when ctx ends are cancelled.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Queue != nil {
		if err := a.Queue.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("enrichment queue: %w", err))
		}
	}
	if a.Limiter != nil {
		a.Limiter.Stop()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
