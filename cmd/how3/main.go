package main

import (
	"os"

	"github.com/how3io/how3-backend/cmd/how3/commands"
)

// main is the entry point for the How3 CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
