package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [symbol...]",
	Short: "Run a scoring pass",
	Long: `Runs one scoring pass over the protocol catalog.

Percentile ranks are recomputed per category cohort first, then every
protocol is scored and the results persisted. Pass symbols to score a
subset; with no arguments the whole catalog is scored.

Example:
  go run ./cmd/how3 score
  go run ./cmd/how3 score LINK UNI`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	var ids []int64
	for _, symbol := range args {
		p, err := a.store.Protocols.GetBySymbol(ctx, symbol)
		if err != nil {
			return fmt.Errorf("unknown protocol %q: %w", symbol, err)
		}
		ids = append(ids, p.ID)
	}

	result, err := a.runner.RunScoringPass(ctx, ids)
	if err != nil {
		return fmt.Errorf("scoring pass: %w", err)
	}

	fmt.Printf("Run %s: scored %d, failed %d, degraded %d in %s\n",
		result.RunID, result.Scored, result.Failed, result.Degraded, result.Duration.Round(time.Millisecond))

	for _, record := range result.Records {
		p, err := a.store.Protocols.GetProtocol(ctx, record.ProtocolID)
		if err != nil {
			continue
		}
		fmt.Printf("  %-6s EQS=%s UGS=%s FVS=%s SS=%s How3=%s\n",
			p.Symbol,
			formatScore(record.EQS), formatScore(record.UGS),
			formatScore(record.FVS), formatScore(record.SS),
			formatScore(record.How3))
	}
	return nil
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
