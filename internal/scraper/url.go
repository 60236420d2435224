package scraper

import (
	"fmt"
	"strings"
)

// Filters narrows a zipcode search. Zero values mean "not set".
type Filters struct {
	MinPrice int
	MaxPrice int
	MinBeds  int
	MaxHOA   int
	Features []string
}

// priceUnit is the granularity of the price filters.
const priceUnit = 1000

// BuildSearchURL returns the Redfin search URL for a zipcode. Filters are emitted in a
// fixed order and only when explicitly set, so equal searches build equal URLs. Price
// bounds under priceUnit cannot be expressed and are left out.
func BuildSearchURL(baseURL, zipcode string, f Filters) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	searchURL := fmt.Sprintf("%s/zipcode/%s", strings.TrimRight(baseURL, "/"), zipcode)

	var filters []string
	if f.MinPrice >= priceUnit {
		filters = append(filters, fmt.Sprintf("min-price=%dk", f.MinPrice/priceUnit))
	}
	if f.MaxPrice >= priceUnit {
		filters = append(filters, fmt.Sprintf("max-price=%dk", f.MaxPrice/priceUnit))
	}
	if f.MinBeds > 0 {
		filters = append(filters, fmt.Sprintf("min-beds=%d", f.MinBeds))
	}
	if features := cleanFeatures(f.Features); len(features) > 0 {
		filters = append(filters, "remarks="+strings.Join(features, ","))
	}
	if f.MaxHOA > 0 {
		filters = append(filters, fmt.Sprintf("hoa=%d", f.MaxHOA))
	}

	if len(filters) > 0 {
		searchURL += "/filter/" + strings.Join(filters, ",")
	}
	return searchURL
}

func cleanFeatures(features []string) []string {
	var out []string
	for _, f := range features {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, strings.ReplaceAll(f, " ", "+"))
		}
	}
	return out
}
