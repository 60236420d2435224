package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"rentalscout/internal/scraper"
	"rentalscout/internal/validation"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a live listing search",
		Long: `Search runs a live listing search for a zipcode, or for the main zipcode of a
city when --city and --state are given.

With --enrich the results are enriched in the foreground before printing:
each listing gets a monthly cost estimate and, when analytics credentials are
configured, a rental projection.

Examples:
  scout search --zip 78704
  scout search --city Austin --state TX --min-price 200000 --features pool
  scout search --zip 78704 --enrich`,
		Args: cobra.NoArgs,
		RunE: runSearchCmd,
	}

	cmd.Flags().StringP("zip", "z", "", "5-digit zipcode")
	cmd.Flags().String("city", "", "City (requires --state and a configured resolver)")
	cmd.Flags().String("state", "", "2-letter state code")
	cmd.Flags().Int("min-price", 0, "Minimum price in dollars")
	cmd.Flags().Int("max-price", 0, "Maximum price in dollars")
	cmd.Flags().Int("min-beds", 0, "Minimum bedrooms")
	cmd.Flags().Int("max-hoa", 0, "Maximum monthly HOA")
	cmd.Flags().String("features", "", "Comma-separated keywords")
	cmd.Flags().BoolP("enrich", "e", false, "Enrich results before printing")

	return cmd
}

func runSearchCmd(cmd *cobra.Command, _ []string) error {
	zip, _ := cmd.Flags().GetString("zip")
	city, _ := cmd.Flags().GetString("city")
	state, _ := cmd.Flags().GetString("state")

	filters, err := searchFilters(cmd)
	if err != nil {
		return err
	}

	ctx, a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	switch {
	case zip != "":
		if err := validation.ValidateZipcode(zip); err != nil {
			return err
		}
	case city != "" && state != "":
		if a.Resolver == nil {
			return errors.New("city search needs ZIPCODE_LLM_URL; pass --zip instead")
		}
		if zip, err = a.Resolver.Resolve(ctx, city, state); err != nil {
			return err
		}
		log.Printf("📍 Resolved %s, %s to %s", city, state, zip)
	default:
		return errors.New("either --zip or --city and --state are required")
	}

	set, err := a.Scraper.Search(ctx, scraper.BuildSearchURL("", zip, filters))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if enrich, _ := cmd.Flags().GetBool("enrich"); enrich && set.TotalListings > 0 {
		enriched, report, err := a.Orchestrator.Enrich(ctx, set)
		if err != nil {
			log.Printf("⚠️  Enrichment failed, printing unenriched results: %v", err)
		} else {
			log.Printf("✅ Enriched %d/%d listings in %s", report.Enriched, report.Attempted, report.Duration().Round(time.Millisecond))
			set = enriched
		}
	}

	return writeJSON(cmd, cmd.OutOrStdout(), set)
}

func searchFilters(cmd *cobra.Command) (scraper.Filters, error) {
	var f scraper.Filters
	f.MinPrice, _ = cmd.Flags().GetInt("min-price")
	f.MaxPrice, _ = cmd.Flags().GetInt("max-price")
	f.MinBeds, _ = cmd.Flags().GetInt("min-beds")
	f.MaxHOA, _ = cmd.Flags().GetInt("max-hoa")
	if f.MinBeds < 0 || f.MaxHOA < 0 {
		return f, errors.New("--min-beds and --max-hoa must not be negative")
	}
	if err := validation.ValidatePriceRange(f.MinPrice, f.MaxPrice); err != nil {
		return f, err
	}

	raw, _ := cmd.Flags().GetString("features")
	features, err := validation.ValidateFeatures(raw)
	if err != nil {
		return f, err
	}
	f.Features = features
	return f, nil
}
