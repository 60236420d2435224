package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rentalscout/internal/app"
	"rentalscout/internal/config"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Search listings and project rental returns",
		Long: `scout searches for-sale listings by zipcode, estimates carrying costs and
looks up short-term rental projections for individual properties.

Settings come from the environment or a .env file, the same as the API server.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("pretty", true, "Indent JSON output")

	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewFinancialsCmd())
	cmd.AddCommand(NewZipcodeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildApp wires the pipeline and returns a context cancelled on SIGINT/SIGTERM.
func buildApp() (context.Context, *app.App, func(), error) {
	a, err := app.Build(config.Load())
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cleanup := func() {
		stop()
		_ = a.Shutdown(context.Background())
	}
	return ctx, a, cleanup, nil
}

func writeJSON(cmd *cobra.Command, w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
