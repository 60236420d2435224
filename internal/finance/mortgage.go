// Package finance estimates the monthly cost of owning a listing.
package finance

import (
	"context"
	"errors"
	"math"

	"rentalscout/internal/models"
)

// ErrNoPrice is returned for listings without an asking price.
var ErrNoPrice = errors.New("listing has no price")

// Estimator returns the monthly carrying cost of a listing.
type Estimator interface {
	Estimate(ctx context.Context, l models.Listing) (float64, error)
}

// MortgageEstimator prices a conventional fixed-rate purchase.
type MortgageEstimator struct {
	DownPayment   float64 // fraction of price, 0.2 = 20%
	AnnualRate    float64 // 0.07 = 7%
	TermYears     int
	PropertyTax   float64 // annual, fraction of price
	InsuranceRate float64 // annual, fraction of price
}

// DefaultMortgage is 20% down at 7% over 30 years with 1.1% tax and 0.35% insurance.
func DefaultMortgage() MortgageEstimator {
	return MortgageEstimator{
		DownPayment:   0.20,
		AnnualRate:    0.07,
		TermYears:     30,
		PropertyTax:   0.011,
		InsuranceRate: 0.0035,
	}
}

// Estimate returns principal and interest plus monthly tax, insurance and HOA.
func (m MortgageEstimator) Estimate(ctx context.Context, l models.Listing) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if l.Price <= 0 {
		return 0, ErrNoPrice
	}

	price := float64(l.Price)
	cost := MonthlyPayment(price*(1-m.DownPayment), m.AnnualRate, m.TermYears)
	cost += price * m.PropertyTax / 12
	cost += price * m.InsuranceRate / 12
	if l.HOA != nil {
		cost += float64(*l.HOA)
	}
	return math.Round(cost*100) / 100, nil
}

// MonthlyPayment is the amortized principal and interest payment on a loan.
func MonthlyPayment(principal, annualRate float64, years int) float64 {
	n := float64(years * 12)
	if principal <= 0 || n <= 0 {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return math.Round(principal/n*100) / 100
	}
	payment := principal * r / (1 - math.Pow(1+r, -n))
	return math.Round(payment*100) / 100
}
