package models

import (
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }

func TestRecomputeROIPresence(t *testing.T) {
	cases := []struct {
		name     string
		listing  Listing
		wantCash *float64
		wantROI  *float64
	}{
		{"both present", Listing{Price: 240000, MonthlyCost: f64(1500), MonthlyRent: f64(2500)}, f64(1000), f64(5)},
		{"no rent", Listing{Price: 240000, MonthlyCost: f64(1500)}, nil, nil},
		{"no cost", Listing{Price: 240000, MonthlyRent: f64(2500)}, nil, nil},
		{"zero price", Listing{MonthlyCost: f64(1500), MonthlyRent: f64(2500)}, f64(1000), nil},
		{"negative cash flow", Listing{Price: 120000, MonthlyCost: f64(2000), MonthlyRent: f64(1000)}, f64(-1000), f64(-10)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := tc.listing
			l.Recompute()
			assertPtr(t, "cashFlow", l.CashFlow, tc.wantCash)
			assertPtr(t, "roi", l.ROI, tc.wantROI)
		})
	}
}

func TestRecomputeClearsStaleValues(t *testing.T) {
	l := Listing{Price: 100000, CashFlow: f64(999), ROI: f64(99), MonthlyRent: f64(1200)}
	l.Recompute()
	if l.CashFlow != nil || l.ROI != nil {
		t.Fatalf("expected stale cashFlow/roi to be cleared, got %v %v", l.CashFlow, l.ROI)
	}
}

func TestApplyFinancialsIsAdditive(t *testing.T) {
	l := Listing{Address: "1 Main St", Price: 300000}
	l.ApplyCost(1800)
	l.ApplyFinancials(Financials{NetOperatingIncome: 41000, OccupancyRate: 72, MonthlyRent: 3000})

	if l.CashFlow == nil || *l.CashFlow != 1200 {
		t.Fatalf("expected cash flow 1200, got %v", l.CashFlow)
	}

	// A later partial or failed fetch must not clear anything
	l.ApplyFinancials(Financials{})
	l.ApplyCost(0)

	if l.MonthlyCost == nil || *l.MonthlyCost != 1800 {
		t.Fatalf("monthlyCost was cleared: %v", l.MonthlyCost)
	}
	if l.MonthlyRent == nil || *l.MonthlyRent != 3000 {
		t.Fatalf("monthlyRent was cleared: %v", l.MonthlyRent)
	}
	if l.AirDnaNOI == nil || *l.AirDnaNOI != 41000 {
		t.Fatalf("airDnaNOI was cleared: %v", l.AirDnaNOI)
	}
	if l.ROI == nil || *l.ROI != 4.8 {
		t.Fatalf("expected roi 4.8, got %v", l.ROI)
	}
}

func TestApplyFinancialsRecomputesOnChange(t *testing.T) {
	l := Listing{Price: 100000, MonthlyCost: f64(1000)}
	l.ApplyFinancials(Financials{MonthlyRent: 1500})
	if l.CashFlow == nil || *l.CashFlow != 500 {
		t.Fatalf("expected cash flow 500, got %v", l.CashFlow)
	}

	l.ApplyFinancials(Financials{MonthlyRent: 2000})
	if *l.CashFlow != 1000 || *l.ROI != 12 {
		t.Fatalf("expected recomputed cash flow 1000 / roi 12, got %v / %v", *l.CashFlow, *l.ROI)
	}
}

func TestSearchResultSetCloneIsDeep(t *testing.T) {
	hoa := 250
	set := NewSearchResultSet("https://example.com", []Listing{{
		Address:  "1 Main St",
		Features: []string{"HOA $250/mo"},
		HOA:      &hoa,
	}}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	clone := set.Clone()
	clone.Listings[0].Features[0] = "changed"
	*clone.Listings[0].HOA = 1
	clone.Listings[0].ApplyCost(1000)

	if set.Listings[0].Features[0] != "HOA $250/mo" || *set.Listings[0].HOA != 250 {
		t.Fatalf("clone shares memory with original: %+v", set.Listings[0])
	}
	if set.Listings[0].MonthlyCost != nil {
		t.Fatalf("enriching the clone modified the original")
	}
}

func TestNewSearchResultSetEmpty(t *testing.T) {
	set := NewSearchResultSet("src", nil, time.Now())
	if set.Listings == nil || set.TotalListings != 0 || set.Message == "" {
		t.Fatalf("unexpected empty set: %+v", set)
	}
}

func assertPtr(t *testing.T, name string, got, want *float64) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("expected %s absent, got %v", name, *got)
		}
		return
	}
	if got == nil {
		t.Fatalf("expected %s = %v, got nil", name, *want)
	}
	if *got != *want {
		t.Fatalf("expected %s = %v, got %v", name, *want, *got)
	}
}
