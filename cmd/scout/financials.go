package main

import (
	"github.com/spf13/cobra"

	"rentalscout/internal/validation"
)

// NewFinancialsCmd creates the financials command.
func NewFinancialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "financials",
		Short: "Look up the rental projection for one address",
		Long: `Financials signs into the analytics site and prints net operating income,
occupancy, annual revenue and monthly rent for a single property.

Requires AIRDNA_EMAIL and AIRDNA_PASSWORD.

Example:
  scout financials --address "1 Main St, Austin, TX 78701" --beds 3 --baths 2`,
		Args: cobra.NoArgs,
		RunE: runFinancialsCmd,
	}

	cmd.Flags().StringP("address", "a", "", "Full street address")
	cmd.Flags().Float64("beds", 0, "Bedrooms")
	cmd.Flags().Float64("baths", 0, "Bathrooms")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}

func runFinancialsCmd(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetString("address")
	address, err := validation.ValidateAddress(raw)
	if err != nil {
		return err
	}
	beds, _ := cmd.Flags().GetFloat64("beds")
	baths, _ := cmd.Flags().GetFloat64("baths")

	ctx, a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	fin, err := a.Orchestrator.FetchOne(ctx, address, beds, baths)
	if err != nil {
		return err
	}
	return writeJSON(cmd, cmd.OutOrStdout(), fin)
}
