package airdna

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rentalscout/internal/models"
)

// Selectors locate the Rentalizer metrics. The MUI class hashes change with every
// frontend release, so the label lookups are kept as a second path.
type Selectors struct {
	Headline       string
	Occupancy      string
	OccupancyLabel string
	RevenueLabels  []string
}

// DefaultSelectors returns the selectors for the current Rentalizer page.
func DefaultSelectors() Selectors {
	return Selectors{
		Headline:       "h3.MuiTypography-root.MuiTypography-titleM.css-sd2qa2",
		Occupancy:      "p.MuiTypography-root.MuiTypography-body1.css-kk2mec",
		OccupancyLabel: "Occupancy",
		RevenueLabels:  []string{"Revenue", "Annual Revenue", "Projected Revenue"},
	}
}

var (
	compactAmount = regexp.MustCompile(`(-?)\s*\$?\s*(\d[\d,]*(?:\.\d+)?)([KkMm])?\b`)
	percentAmount = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseCompactCurrency reads amounts like "$41K", "$950", "$1.2M" or "-$3.5K".
// The multiplier must touch the number, so "$950 Monthly" is 950. Unparseable text is 0.
func ParseCompactCurrency(s string) float64 {
	m := compactAmount.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[3]) {
	case "K":
		v *= 1_000
	case "M":
		v *= 1_000_000
	}
	if m[1] == "-" || strings.HasPrefix(strings.TrimSpace(s), "(") {
		v = -v
	}
	return math.Round(v*100) / 100
}

// ParsePercent reads "72%" or "72.5 %" as 72 or 72.5.
func ParsePercent(s string) float64 {
	m := percentAmount.FindString(s)
	if m == "" {
		return 0
	}
	v, _ := strconv.ParseFloat(m, 64)
	return v
}

// ParseFinancials reads the metrics from a Rentalizer page snapshot. Absent values are 0.
func ParseFinancials(html string, sel Selectors) (models.Financials, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Financials{}, fmt.Errorf("failed to parse rentalizer page: %w", err)
	}

	var f models.Financials
	f.NetOperatingIncome = ParseCompactCurrency(doc.Find(sel.Headline).First().Text())

	occupancy := strings.TrimSpace(doc.Find(sel.Occupancy).First().Text())
	if occupancy == "" && sel.OccupancyLabel != "" {
		occupancy = valueByLabel(doc, sel.OccupancyLabel)
	}
	f.OccupancyRate = ParsePercent(occupancy)

	for _, label := range sel.RevenueLabels {
		if v := valueByLabel(doc, label); v != "" {
			f.AnnualRevenue = ParseCompactCurrency(v)
			break
		}
	}
	if f.AnnualRevenue > 0 {
		f.MonthlyRent = math.Round(f.AnnualRevenue/12*100) / 100
	}
	return f, nil
}

// valueByLabel finds a leaf element whose text equals label and returns the first
// heading or value text in one of its nearest ancestors.
func valueByLabel(doc *goquery.Document, label string) string {
	var out string
	doc.Find("p, span, h6, div, dt").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 || !strings.EqualFold(collapse(s.Text()), label) {
			return true
		}
		anc := s.Parent()
		for depth := 0; depth < 3 && anc.Length() > 0; depth++ {
			if v := anc.Find("h3, h4, h5, dd").First(); v.Length() > 0 {
				out = collapse(v.Text())
				return false
			}
			anc = anc.Parent()
		}
		return true
	})
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
