// cmd/claim-intake/root.go
package main

import (
	"fmt"
	"os"

	"claim-intake/internal/common/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "claim-intake",
	Short: "Conversational insurance claim intake agent",
	Long: `claim-intake answers NLU fulfillment webhooks, collects the five claim
details into PostgreSQL and hands completed claims to the workflow engine.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (default: configs/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workersCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(activitiesCmd)
}
