// cmd/claim-intake/activities.go
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"claim-intake/internal/common/config"
	"claim-intake/internal/common/errors"
	"claim-intake/pkg/registry"

	"github.com/spf13/cobra"
)

var registryPath string

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Inspect the claim workflow activity registry",
}

var activitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered activities and processes",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TASK TYPE\tSTATUS\tTIMEOUT\tRETRIES\tWORKFLOWS")
		for _, a := range reg.Activities {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.TaskType, a.ImplementationStatus, a.Timeout, a.Retries, strings.Join(a.Workflows, ","))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout())
		for _, p := range reg.Processes {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (started by %s): %s\n", p.ID, p.StartedBy, strings.Join(p.Variables, ", "))
		}
		return nil
	},
}

var activitiesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the registry and, with --config, that every activity has a worker entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return err
		}

		known := map[string]bool{}
		for _, code := range errors.KnownCodes() {
			known[string(code)] = true
		}
		problems := reg.Validate(known)

		if configPath != "" {
			cfg, err := config.LoadFromFile(configPath)
			if err != nil {
				return err
			}
			for _, taskType := range reg.TaskTypes() {
				if _, ok := cfg.Workers[taskType]; !ok {
					problems = append(problems, fmt.Errorf("worker %s has no entry under workers in %s", taskType, configPath))
				}
			}
		}

		for _, p := range problems {
			fmt.Fprintln(os.Stderr, "✗", p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("registry validation failed with %d problem(s)", len(problems))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d activities, %d processes\n", len(reg.Activities), len(reg.Processes))
		return nil
	},
}

func init() {
	activitiesCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "Registry JSON file (default: built-in)")
	activitiesCmd.AddCommand(activitiesListCmd)
	activitiesCmd.AddCommand(activitiesValidateCmd)
}
