// cmd/claim-intake/migrate.go
package main

import (
	"context"
	"fmt"
	"time"

	"claim-intake/internal/intake/store"

	"github.com/spf13/cobra"
)

var verifyOnly bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the insurance_sessions table",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&verifyOnly, "verify", false, "Only check that the schema is current")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rt, err := bootstrap(ctx, bootstrapOptions{})
	if err != nil {
		return err
	}
	defer rt.close()

	if !verifyOnly {
		if err := store.Migrate(ctx, rt.pg.DB); err != nil {
			return err
		}
		rt.log.Info("Migrations applied", nil)
	}

	if err := store.Verify(ctx, rt.pg.DB); err != nil {
		return fmt.Errorf("schema verification failed: %w", err)
	}
	rt.log.Info("Schema verified", nil)
	return nil
}
