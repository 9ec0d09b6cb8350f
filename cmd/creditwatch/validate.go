package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/operatorhq/creditwatch/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and exit",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration valid")
	fmt.Printf("  Server: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  Database: %s\n", cfg.Database.DSN)
	fmt.Printf("  Monthly budget: $%.2f\n", cfg.Budget.Monthly)
	fmt.Printf("  Usage lookback: %d days\n", cfg.Usage.LookbackDays)
	fmt.Printf("  Snapshot schedule: %s (enabled: %v)\n", cfg.Snapshot.Schedule, cfg.Snapshot.Enabled)
	fmt.Printf("  Anthropic configured: %v\n", cfg.Providers.Anthropic.AdminKey != "")
	fmt.Printf("  Tavily configured: %v\n", cfg.Providers.Tavily.APIKey != "")
	fmt.Printf("  FullEnrich configured: %v\n", cfg.Providers.FullEnrich.APIKey != "")
	fmt.Printf("  PostHog configured: %v\n", cfg.Providers.PostHog.APIKey != "")
	fmt.Printf("  Cost Explorer configured: %v\n", cfg.Providers.CostExplorer.Endpoint != "")
	return nil
}
