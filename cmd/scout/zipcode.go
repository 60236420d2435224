package main

import (
	"errors"

	"github.com/spf13/cobra"

	"rentalscout/internal/validation"
)

// NewZipcodeCmd creates the zipcode command.
func NewZipcodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zipcode",
		Short: "Resolve a city to its main zipcode",
		Args:  cobra.NoArgs,
		RunE:  runZipcodeCmd,
	}

	cmd.Flags().String("city", "", "City name")
	cmd.Flags().String("state", "", "2-letter state code")
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("state")

	return cmd
}

func runZipcodeCmd(cmd *cobra.Command, _ []string) error {
	rawCity, _ := cmd.Flags().GetString("city")
	rawState, _ := cmd.Flags().GetString("state")
	city, err := validation.ValidateCity(rawCity)
	if err != nil {
		return err
	}
	state, err := validation.ValidateState(rawState)
	if err != nil {
		return err
	}

	ctx, a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if a.Resolver == nil {
		return errors.New("ZIPCODE_LLM_URL is not set")
	}
	zip, err := a.Resolver.Resolve(ctx, city, state)
	if err != nil {
		return err
	}
	return writeJSON(cmd, cmd.OutOrStdout(), map[string]string{"city": city, "state": state, "zipcode": zip})
}
