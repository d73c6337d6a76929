package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/how3io/how3-backend/internal/contracts"
)

// seedProtocols is the initial tracked catalog. Symbols must have a curated
// query set in the ingest registry before a refresh can feed them.
var seedProtocols = []contracts.Protocol{
	{Name: "Chainlink", Symbol: "LINK", Category: "Oracle", Description: "Decentralized oracle network"},
	{Name: "Uniswap", Symbol: "UNI", Category: "Exchange", Description: "Automated market maker"},
	{Name: "Aave", Symbol: "AAVE", Category: "Lending", Description: "Liquidity protocol for lending and borrowing"},
	{Name: "Compound", Symbol: "COMP", Category: "Lending", Description: "Algorithmic money market"},
	{Name: "Maker", Symbol: "MKR", Category: "Lending", Description: "Collateralized stablecoin issuer"},
	{Name: "Curve", Symbol: "CRV", Category: "Exchange", Description: "Stablecoin-focused exchange"},
	{Name: "Lido", Symbol: "LDO", Category: "Staking", Description: "Liquid staking protocol"},
}

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the protocol catalog",
	Long: `Upserts the initial protocol catalog. Safe to re-run; existing
protocols are updated in place, keyed by symbol.

Example:
  go run ./cmd/how3 seed`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	for i := range seedProtocols {
		p := seedProtocols[i]
		if err := a.store.Protocols.Upsert(ctx, &p); err != nil {
			return fmt.Errorf("seed %s: %w", p.Symbol, err)
		}
		fmt.Printf("Seeded %s (%s)\n", p.Symbol, p.Category)
	}

	fmt.Printf("Catalog seeded with %d protocols\n", len(seedProtocols))
	return nil
}
