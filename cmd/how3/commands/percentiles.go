package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/how3io/how3-backend/internal/contracts"
	"github.com/how3io/how3-backend/internal/scoring"
)

// percentilesCmd represents the percentiles command
var percentilesCmd = &cobra.Command{
	Use:   "percentiles",
	Short: "Recompute percentile ranks",
	Long: `Recomputes user-metric percentile ranks per category cohort and
persists them. Defaults to every category and the latest complete month.

Example:
  go run ./cmd/how3 percentiles
  go run ./cmd/how3 percentiles --category Oracle --month 2026-07`,
	RunE: runPercentiles,
}

var (
	percentilesCategory string
	percentilesMonth    string
)

func init() {
	rootCmd.AddCommand(percentilesCmd)

	percentilesCmd.Flags().StringVar(&percentilesCategory, "category", "", "limit to one category")
	percentilesCmd.Flags().StringVar(&percentilesMonth, "month", "", "cohort month as YYYY-MM (default: previous month)")
}

func runPercentiles(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	month := contracts.MonthStart(time.Now().UTC()).AddDate(0, -1, 0)
	if percentilesMonth != "" {
		month, err = time.Parse("2006-01", percentilesMonth)
		if err != nil {
			return fmt.Errorf("invalid --month %q, want YYYY-MM", percentilesMonth)
		}
	}

	categories := []string{percentilesCategory}
	if percentilesCategory == "" {
		protocols, err := a.store.Protocols.ListProtocols(ctx)
		if err != nil {
			return fmt.Errorf("list protocols: %w", err)
		}
		seen := make(map[string]bool)
		categories = categories[:0]
		for _, p := range protocols {
			if !seen[p.Category] {
				seen[p.Category] = true
				categories = append(categories, p.Category)
			}
		}
	}

	for _, category := range categories {
		cohort, err := a.store.Users.UserCohort(ctx, category, month)
		if err != nil {
			return fmt.Errorf("load cohort %s: %w", category, err)
		}
		if len(cohort) == 0 {
			fmt.Printf("%s: no observations for %s\n", category, month.Format("2006-01"))
			continue
		}

		refs := make([]*contracts.UserObservation, len(cohort))
		for i := range cohort {
			refs[i] = &cohort[i]
		}
		scoring.RankCohort(refs)

		for _, obs := range refs {
			if err := a.store.Users.SavePercentiles(ctx, obs); err != nil {
				return fmt.Errorf("save percentiles: %w", err)
			}
		}
		fmt.Printf("%s: ranked %d protocols for %s\n", category, len(refs), month.Format("2006-01"))
	}
	return nil
}
