package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS insurance_sessions (
		session_id TEXT PRIMARY KEY,
		claimant_name TEXT,
		policy_number TEXT,
		date_time_of_incident TEXT,
		vehicle_info TEXT,
		incident_description TEXT,
		photo_uploaded BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT NOT NULL DEFAULT 'OPEN',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`ALTER TABLE insurance_sessions ADD COLUMN IF NOT EXISTS damage_report TEXT;`,
	`ALTER TABLE insurance_sessions ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW();`,
	`CREATE INDEX IF NOT EXISTS idx_insurance_sessions_status ON insurance_sessions (status);`,
}

var expectedColumns = []string{
	"claimant_name", "created_at", "damage_report", "date_time_of_incident",
	"incident_description", "photo_uploaded", "policy_number", "session_id",
	"status", "updated_at", "vehicle_info",
}

// Migrate creates or upgrades insurance_sessions. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, q := range migrations {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Verify checks that insurance_sessions exists with every expected column.
func Verify(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = 'insurance_sessions'`)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	defer rows.Close()

	have := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan column: %w", err)
		}
		have[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	var missing []string
	for _, c := range expectedColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("insurance_sessions is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
