// Package main is the entry point for creditwatch.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "creditwatch",
	Short: "API credit and cloud spend monitoring service",
	Long: `Creditwatch polls provider billing APIs, estimates usage from
tracked analytics events and serves a consolidated billing dashboard
with budget and exhaustion alerts.

Examples:
  creditwatch serve --config=creditwatch.yaml
  creditwatch snapshot
  creditwatch validate --config=creditwatch.yaml`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("creditwatch %s (commit: %s, built: %s)\n", version, commit, buildDate)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (default: environment only)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
