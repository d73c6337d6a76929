package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh [symbol...]",
	Short: "Refresh protocol metric tables",
	Long: `Pulls fresh revenue and user metric tables from Dune Analytics and
updates market caps. Pass symbols to refresh a subset; with no arguments
every tracked protocol is refreshed.

Example:
  go run ./cmd/how3 refresh
  go run ./cmd/how3 refresh LINK`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	if len(args) == 0 {
		if err := a.collector.RefreshAll(ctx); err != nil {
			return fmt.Errorf("refresh all: %w", err)
		}
		fmt.Println("Refresh completed")
		return nil
	}

	for _, symbol := range args {
		p, err := a.store.Protocols.GetBySymbol(ctx, symbol)
		if err != nil {
			return fmt.Errorf("unknown protocol %q: %w", symbol, err)
		}
		if err := a.collector.Refresh(ctx, p); err != nil {
			return fmt.Errorf("refresh %s: %w", symbol, err)
		}
		fmt.Printf("Refreshed %s\n", symbol)
	}
	return nil
}
