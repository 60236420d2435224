package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	zipcodePattern = regexp.MustCompile(`^\d{5}$`)
	statePattern   = regexp.MustCompile(`^[A-Za-z]{2}$`)
	cityPattern    = regexp.MustCompile(`^[\p{L}][\p{L} .'-]*$`)
	featurePattern = regexp.MustCompile(`^[\p{L}\d ]+$`)
	unsafeChars    = regexp.MustCompile(`[<>"'&]`)
	whitespace     = regexp.MustCompile(`\s+`)
)

// ValidateZipcode checks for a five-digit US zipcode.
func ValidateZipcode(zip string) error {
	if !zipcodePattern.MatchString(zip) {
		return fmt.Errorf("zipcode must be exactly 5 digits")
	}
	return nil
}

// ValidateState checks for a two-letter state code and returns it upper-cased.
func ValidateState(state string) (string, error) {
	state = strings.TrimSpace(state)
	if !statePattern.MatchString(state) {
		return "", fmt.Errorf("state must be a 2-letter code")
	}
	return strings.ToUpper(state), nil
}

// ValidateCity normalizes whitespace and rejects names with digits or markup.
func ValidateCity(city string) (string, error) {
	city = strings.TrimSpace(whitespace.ReplaceAllString(city, " "))
	if len(city) < 2 || len(city) > 60 {
		return "", fmt.Errorf("city must be between 2 and 60 characters")
	}
	if !cityPattern.MatchString(city) {
		return "", fmt.Errorf("city contains invalid characters")
	}
	return city, nil
}

// ValidateAddress strips markup characters and normalizes whitespace.
func ValidateAddress(address string) (string, error) {
	address = unsafeChars.ReplaceAllString(address, "")
	address = strings.TrimSpace(whitespace.ReplaceAllString(address, " "))
	if len(address) < 5 || len(address) > 200 {
		return "", fmt.Errorf("address must be between 5 and 200 characters")
	}
	return address, nil
}

// ValidateFeatures splits a comma-separated feature list, dropping empty entries.
func ValidateFeatures(raw string) ([]string, error) {
	var features []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(whitespace.ReplaceAllString(f, " "))
		if f == "" {
			continue
		}
		if len(f) > 40 || !featurePattern.MatchString(f) {
			return nil, fmt.Errorf("invalid feature %q", f)
		}
		features = append(features, f)
	}
	if len(features) > 10 {
		return nil, fmt.Errorf("at most 10 features are allowed")
	}
	return features, nil
}

// MinPriceFilter is the smallest price bound a search accepts. Prices are filtered
// in whole thousands.
const MinPriceFilter = 1000

// ValidatePriceRange checks a price range. A bound that is set must be at least
// MinPriceFilter.
func ValidatePriceRange(lo, hi int) error {
	if err := ValidateRange("price", lo, hi); err != nil {
		return err
	}
	if (lo > 0 && lo < MinPriceFilter) || (hi > 0 && hi < MinPriceFilter) {
		return fmt.Errorf("price bounds must be at least %d", MinPriceFilter)
	}
	return nil
}

// ValidateRange checks that an optional lower bound does not exceed an optional upper bound.
func ValidateRange(name string, lo, hi int) error {
	if lo < 0 || hi < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	if lo > 0 && hi > 0 && lo > hi {
		return fmt.Errorf("min %s must not exceed max %s", name, name)
	}
	return nil
}
