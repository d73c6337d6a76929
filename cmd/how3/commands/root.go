package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "how3",
	Short: "How3 - fundamentals-based crypto protocol scoring",
	Long: `How3 Unified CLI

Scores crypto protocols on revenue quality, user growth, fair value and
safety, and serves the results over a REST and websocket API.

Usage:
  go run ./cmd/how3 [command]

Examples:
  go run ./cmd/how3 api
  go run ./cmd/how3 refresh
  go run ./cmd/how3 score
  go run ./cmd/how3 scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
