// Package main provides the job agent CLI: automated job discovery, matching
// and application tracking for a candidate profile.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_agent",
	Short: "Automated job discovery and application agent",
	Long:  "job_agent scrapes configured job sources, scores postings against a candidate profile, tracks every posting through an application lifecycle and drives application attempts.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
