package scraper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategy is one set of selectors for reading result cards. Strategies are tried in
// order and the first one that finds any card wins.
type Strategy struct {
	Name string `yaml:"name"`

	Card    string `yaml:"card"`
	Exclude string `yaml:"exclude"` // sponsored placements

	Address string `yaml:"address"`
	Price   string `yaml:"price"`
	Beds    string `yaml:"beds"`
	Baths   string `yaml:"baths"`
	Sqft    string `yaml:"sqft"`
	Fact    string `yaml:"fact"`
	Link    string `yaml:"link"`
	Image   string `yaml:"image"`
}

// Selectors configures the whole results page.
type Selectors struct {
	NoResults  string     `yaml:"noResults"`
	Strategies []Strategy `yaml:"strategies"`
}

// ResultsSelector matches any card of any strategy.
func (s Selectors) ResultsSelector() string {
	sel := ""
	for i, st := range s.Strategies {
		if i > 0 {
			sel += ", "
		}
		sel += st.Card
	}
	return sel
}

// DefaultSelectors describes the current Redfin home card followed by the older
// HomeCardV2 layout.
func DefaultSelectors() Selectors {
	return Selectors{
		NoResults: ".no-results-message",
		Strategies: []Strategy{
			{
				Name:    "homecard",
				Card:    ".HomeCardContainer",
				Exclude: ".InlineResultStaticPlacement",
				Address: ".bp-Homecard__Content .bp-Homecard__Address",
				Price:   ".bp-Homecard__Content .bp-Homecard__Price--value",
				Beds:    ".bp-Homecard__Stats--beds",
				Baths:   ".bp-Homecard__Stats--baths",
				Sqft:    ".bp-Homecard__Stats--sqft",
				Fact:    ".KeyFactsExtension .KeyFacts-item",
				Link:    "a.bp-Homecard__Photo, .bp-Homecard__Photo",
				Image:   ".bp-Homecard__Photo--image",
			},
			{
				Name:    "homecard-v2",
				Card:    ".HomeCardV2",
				Exclude: ".sponsored",
				Address: ".homeAddressV2, .address",
				Price:   ".homecardV2Price",
				Beds:    ".HomeStatsV2 .stats:nth-child(1)",
				Baths:   ".HomeStatsV2 .stats:nth-child(2)",
				Sqft:    ".HomeStatsV2 .stats:nth-child(3)",
				Fact:    ".KeyFacts .KeyFacts-item",
				Link:    "a.slider-item, a[href*='/home/']",
				Image:   "img.homecard-image, img",
			},
		},
	}
}

// LoadSelectors reads selector strategies from a YAML file. Strategies listed in the
// file replace the defaults; an omitted noResults keeps the default marker.
func LoadSelectors(path string) (Selectors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Selectors{}, fmt.Errorf("failed to read selectors file: %w", err)
	}

	sel := DefaultSelectors()
	var file Selectors
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Selectors{}, fmt.Errorf("failed to parse selectors file: %w", err)
	}

	if file.NoResults != "" {
		sel.NoResults = file.NoResults
	}
	if len(file.Strategies) > 0 {
		for i, st := range file.Strategies {
			if st.Card == "" || st.Address == "" {
				return Selectors{}, fmt.Errorf("strategy %d (%s): card and address selectors are required", i, st.Name)
			}
		}
		sel.Strategies = file.Strategies
	}
	return sel, nil
}
