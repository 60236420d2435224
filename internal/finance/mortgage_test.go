package finance

import (
	"context"
	"errors"
	"testing"

	"rentalscout/internal/models"
)

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
		want      float64
	}{
		{"30 year at 7%", 240000, 0.07, 30, 1596.73},
		{"zero rate", 120000, 0, 10, 1000},
		{"no principal", 0, 0.07, 30, 0},
		{"no term", 100000, 0.07, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthlyPayment(tt.principal, tt.rate, tt.years); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateIncludesTaxInsuranceAndHOA(t *testing.T) {
	m := DefaultMortgage()
	l := models.Listing{Address: "1 Main St", Price: 300000}

	got, err := m.Estimate(context.Background(), l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1596.73 P&I + 275 tax + 87.50 insurance
	if got != 1959.23 {
		t.Fatalf("got %v, want 1959.23", got)
	}

	hoa := 150
	l.HOA = &hoa
	withHOA, _ := m.Estimate(context.Background(), l)
	if withHOA != 2109.23 {
		t.Fatalf("got %v, want 2109.23 with HOA", withHOA)
	}
}

func TestEstimateWithoutPrice(t *testing.T) {
	_, err := DefaultMortgage().Estimate(context.Background(), models.Listing{Address: "1 Main St"})
	if !errors.Is(err, ErrNoPrice) {
		t.Fatalf("expected ErrNoPrice, got %v", err)
	}
}

func TestEstimateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DefaultMortgage().Estimate(ctx, models.Listing{Price: 100000}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
