package models

import (
	"math"
	"time"
)

// Listing represents one property scraped from a search results page.
// Derived metrics are pointers: nil means the source that feeds them has not succeeded yet.
type Listing struct {
	// Identity
	Address string `json:"address"`
	URL     string `json:"url"`

	// Base attributes from the search card
	Price    int      `json:"price"`
	Beds     float64  `json:"beds"`
	Baths    float64  `json:"baths"`
	Sqft     int      `json:"sqft"`
	HOA      *int     `json:"hoa,omitempty"` // monthly fee
	Features []string `json:"features"`
	ImageURL string   `json:"imageUrl,omitempty"`

	// Enrichment
	MonthlyCost   *float64 `json:"monthlyCost,omitempty"`
	MonthlyRent   *float64 `json:"monthlyRent,omitempty"`
	AirDnaNOI     *float64 `json:"airDnaNOI,omitempty"`
	OccupancyRate *float64 `json:"occupancyRate,omitempty"`

	// Computed from the fields above, never set directly
	CashFlow *float64 `json:"cashFlow,omitempty"`
	ROI      *float64 `json:"roi,omitempty"`
}

// Financials is what the analytics site reports for one property.
// A zero field means the value was not found on the page.
type Financials struct {
	NetOperatingIncome float64 `json:"netOperatingIncome"`
	OccupancyRate      float64 `json:"occupancyRate"`
	AnnualRevenue      float64 `json:"annualRevenue"`
	MonthlyRent        float64 `json:"monthlyRent"`
}

// IsEmpty reports whether nothing usable was found.
func (f Financials) IsEmpty() bool {
	return f.NetOperatingIncome == 0 && f.OccupancyRate == 0 && f.MonthlyRent == 0
}

// Valid reports whether the listing can be returned to a client.
func (l *Listing) Valid() bool {
	return l.Address != ""
}

// ApplyCost records the estimated monthly carrying cost. Non-positive estimates are ignored
// so a failed estimate never replaces an earlier one.
func (l *Listing) ApplyCost(cost float64) {
	if cost <= 0 || math.IsNaN(cost) {
		return
	}
	l.MonthlyCost = ptr(round2(cost))
	l.Recompute()
}

// ApplyFinancials merges analytics data into the listing. Only values that were actually
// found are written; existing values are never cleared.
func (l *Listing) ApplyFinancials(f Financials) {
	if f.MonthlyRent > 0 {
		l.MonthlyRent = ptr(round2(f.MonthlyRent))
	}
	if f.NetOperatingIncome != 0 {
		l.AirDnaNOI = ptr(round2(f.NetOperatingIncome))
	}
	if f.OccupancyRate > 0 {
		l.OccupancyRate = ptr(f.OccupancyRate)
	}
	l.Recompute()
}

// Recompute derives cash flow and ROI from the current cost, rent and price.
// Both are cleared whenever an input is missing so a stale combination can't survive.
func (l *Listing) Recompute() {
	l.CashFlow = nil
	l.ROI = nil
	if l.MonthlyRent == nil || l.MonthlyCost == nil {
		return
	}

	cashFlow := round2(*l.MonthlyRent - *l.MonthlyCost)
	l.CashFlow = &cashFlow

	if l.Price > 0 {
		roi := round2(cashFlow * 12 / float64(l.Price) * 100)
		l.ROI = &roi
	}
}

// Clone returns a deep copy so enrichment can work without touching published data.
func (l Listing) Clone() Listing {
	c := l
	if l.Features != nil {
		c.Features = append([]string(nil), l.Features...)
	}
	c.HOA = clonePtr(l.HOA)
	c.MonthlyCost = clonePtr(l.MonthlyCost)
	c.MonthlyRent = clonePtr(l.MonthlyRent)
	c.AirDnaNOI = clonePtr(l.AirDnaNOI)
	c.OccupancyRate = clonePtr(l.OccupancyRate)
	c.CashFlow = clonePtr(l.CashFlow)
	c.ROI = clonePtr(l.ROI)
	return c
}

// SearchResultSet is the cached result of one search.
type SearchResultSet struct {
	Source        string     `json:"source"`
	Timestamp     time.Time  `json:"timestamp"`
	TotalListings int        `json:"totalListings"`
	Listings      []Listing  `json:"listings"`
	EnrichedAt    *time.Time `json:"enrichedAt,omitempty"`
	Message       string     `json:"message,omitempty"`
}

// NewSearchResultSet builds a result set stamped with the given time.
func NewSearchResultSet(source string, listings []Listing, at time.Time) *SearchResultSet {
	if listings == nil {
		listings = []Listing{}
	}
	set := &SearchResultSet{
		Source:        source,
		Timestamp:     at.UTC(),
		TotalListings: len(listings),
		Listings:      listings,
	}
	if len(listings) == 0 {
		set.Message = "No listings found matching your criteria"
	}
	return set
}

// Clone deep-copies the set and all of its listings.
func (s *SearchResultSet) Clone() *SearchResultSet {
	c := *s
	c.Listings = make([]Listing, len(s.Listings))
	for i, l := range s.Listings {
		c.Listings[i] = l.Clone()
	}
	c.EnrichedAt = clonePtr(s.EnrichedAt)
	return &c
}

func ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
