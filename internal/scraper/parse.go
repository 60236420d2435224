package scraper

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rentalscout/internal/models"
)

// DefaultBaseURL is used to resolve relative detail links.
const DefaultBaseURL = "https://www.redfin.com"

const hoaMarker = "HOA"

var (
	errMissingAddress = errors.New("card has no address")

	priceAmount  = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)([KkMm])?\b`)
	firstDecimal = regexp.MustCompile(`\d+(?:\.\d+)?`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)
)

// ParseListings turns a rendered results page into listings. It depends only on the
// HTML, so the same snapshot always yields the same listings in page order.
func ParseListings(html, baseURL string, sel Selectors) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	if sel.NoResults != "" && doc.Find(sel.NoResults).Length() > 0 {
		log.Println("[scraper] no listings found for this search")
		return []models.Listing{}, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	for _, st := range sel.Strategies {
		cards := doc.Find(st.Card)
		if st.Exclude != "" {
			cards = cards.Not(st.Exclude)
		}
		if cards.Length() == 0 {
			continue
		}

		listings := make([]models.Listing, 0, cards.Length())
		cards.Each(func(i int, card *goquery.Selection) {
			listing, err := parseCard(card, st, base)
			if err != nil {
				log.Printf("⚠️  [scraper] skipping card %d (%s): %v", i, st.Name, err)
				return
			}
			listings = append(listings, listing)
		})

		if len(listings) > 0 {
			log.Printf("✅ [scraper] extracted %d/%d cards with strategy %s", len(listings), cards.Length(), st.Name)
			return listings, nil
		}
		log.Printf("⚠️  [scraper] strategy %s matched %d cards but none were readable", st.Name, cards.Length())
	}

	return []models.Listing{}, nil
}

func parseCard(card *goquery.Selection, st Strategy, base *url.URL) (models.Listing, error) {
	address := text(card, st.Address)
	if address == "" {
		return models.Listing{}, errMissingAddress
	}

	listing := models.Listing{
		Address:  address,
		Price:    ParsePrice(text(card, st.Price)),
		Beds:     ParseDecimal(text(card, st.Beds)),
		Baths:    ParseDecimal(text(card, st.Baths)),
		Sqft:     ParseInteger(text(card, st.Sqft)),
		Features: []string{},
	}

	if st.Fact != "" {
		card.Find(st.Fact).Each(func(_ int, item *goquery.Selection) {
			fact := collapse(item.Text())
			if fact == "" {
				return
			}
			listing.Features = append(listing.Features, fact)
			if listing.HOA == nil && strings.Contains(fact, hoaMarker) {
				if digits := nonDigits.ReplaceAllString(fact, ""); digits != "" {
					if hoa, err := strconv.Atoi(digits); err == nil {
						listing.HOA = &hoa
					}
				}
			}
		})
	}

	if href := attr(card, st.Link, "href"); href != "" {
		listing.URL = resolve(base, href)
	}
	if src := attr(card, st.Image, "src"); src != "" {
		listing.ImageURL = resolve(base, src)
	}

	return listing, nil
}

// ParsePrice reads the first amount in s, with an optional K or M multiplier, so
// "Price $450,000" is 450000 and "$1.25M" is 1250000. Anything unreadable is 0.
func ParsePrice(s string) int {
	m := priceAmount.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		v *= 1_000
	case "M":
		v *= 1_000_000
	}
	return int(math.Round(v))
}

// ParseInteger drops every non-digit character, so "1,450 sq ft" is 1450.
func ParseInteger(s string) int {
	n, err := strconv.Atoi(nonDigits.ReplaceAllString(s, ""))
	if err != nil {
		return 0
	}
	return n
}

// ParseDecimal reads the first decimal number, so "2.5 baths" is 2.5 and "—" is 0.
func ParseDecimal(s string) float64 {
	m := firstDecimal.FindString(strings.ReplaceAll(s, ",", ""))
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

func text(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return collapse(card.Find(selector).First().Text())
}

func attr(card *goquery.Selection, selector, name string) string {
	if selector == "" {
		return ""
	}
	target := card.Find(selector).First()
	if target.Length() == 0 && card.Is(selector) {
		target = card
	}
	v, _ := target.Attr(name)
	return strings.TrimSpace(v)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
