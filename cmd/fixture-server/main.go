// Package main serves canned SpiceGold backend responses for local runs of
// the dashboard.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/fixtures"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		addr    string
		variant string
	)

	names := make([]string, 0, len(fixtures.Variants()))
	for _, v := range fixtures.Variants() {
		names = append(names, string(v))
	}

	cmd := &cobra.Command{
		Use:   "fixture-server",
		Short: "Serve sample analytics data",
		Long: `Serve sample analytics data in the shape of the SpiceGold backend.

Point the dashboard at it with API_BASE_URL=http://localhost:8089.
The variant selects the payload shape of the daily range endpoint.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := fixtures.ParseVariant(variant)
			if err != nil {
				return err
			}
			return serve(cmd, addr, v)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8089", "Listen address")
	cmd.Flags().StringVarP(&variant, "variant", "v", string(fixtures.VariantStandard),
		"Payload variant: "+strings.Join(names, ", "))
	return cmd
}

func serve(cmd *cobra.Command, addr string, v fixtures.Variant) error {
	app := fixtures.NewApp(v)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		_ = app.Shutdown()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "serving %s fixtures on %s\n", v, addr)
	return app.Listen(addr)
}
