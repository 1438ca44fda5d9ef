// Package main provides the entry point for the dataset miner CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "miner",
	Short: "Periodic dataset submission miner",
	Long:  "Miner builds randomized evaluation dataset submissions on a daily schedule, publishes them to the content hub, and announces the resulting model record to the subnet ledger.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
