// Package handlers exposes listing search, enrichment and admin endpoints over gin.
package handlers

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"rentalscout/internal/cache"
	"rentalscout/internal/enrich"
	"rentalscout/internal/finance"
	"rentalscout/internal/models"
	"rentalscout/internal/zipcode"
)

// Searcher runs a live listing search.
type Searcher interface {
	Search(ctx context.Context, searchURL string) (*models.SearchResultSet, error)
}

// Enqueuer accepts background enrichment jobs without blocking.
type Enqueuer interface {
	Submit(job enrich.Job) bool
	Stats() enrich.QueueStats
}

// FinancialsFetcher looks up a single property.
type FinancialsFetcher interface {
	FetchOne(ctx context.Context, address string, beds, baths float64) (models.Financials, error)
}

// RunLister returns recent enrichment reports.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]models.EnrichmentReport, error)
}

// Deps are the collaborators a Handler needs. Runs may be nil.
type Deps struct {
	Searcher      Searcher
	Cache         *cache.ResultCache
	Queue         Enqueuer
	Financials    FinancialsFetcher
	Resolver      zipcode.Resolver
	Estimator     finance.Estimator
	Runs          RunLister
	SearchBaseURL string
	SearchTimeout time.Duration
}

// Handler serves the HTTP API.
type Handler struct {
	searcher      Searcher
	cache         *cache.ResultCache
	queue         Enqueuer
	financials    FinancialsFetcher
	resolver      zipcode.Resolver
	estimator     finance.Estimator
	runs          RunLister
	searchBaseURL string
	searchTimeout time.Duration

	// collapses identical concurrent searches into one browser session
	searches singleflight.Group
}

// NewHandler creates a Handler.
func NewHandler(d Deps) *Handler {
	if d.SearchTimeout <= 0 {
		d.SearchTimeout = 3 * time.Minute
	}
	if d.Estimator == nil {
		d.Estimator = finance.DefaultMortgage()
	}
	return &Handler{
		searcher:      d.Searcher,
		cache:         d.Cache,
		queue:         d.Queue,
		financials:    d.Financials,
		resolver:      d.Resolver,
		estimator:     d.Estimator,
		runs:          d.Runs,
		searchBaseURL: d.SearchBaseURL,
		searchTimeout: d.SearchTimeout,
	}
}
