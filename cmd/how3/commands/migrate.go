package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/how3io/how3-backend/internal/store"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Creates the protocols, revenue_observations, user_observations and
protocol_scores tables and their indexes. Migrations are idempotent; running
this against an up-to-date database is a no-op.

Example:
  go run ./cmd/how3 migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := store.Migrate(context.Background(), a.db.Pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	fmt.Println("Migrations applied")
	return nil
}
