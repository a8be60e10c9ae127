// Package store persists claim sessions.
package store

import (
	"context"

	"claim-intake/internal/models"
)

// SessionStore is the persistence contract of the intake agent.
//
// Implementations wrap driver failures as errors.ErrStoreUnavailable and
// report unknown sessions as errors.ErrSessionNotFound.
type SessionStore interface {
	// GetOrCreate returns the session, creating an empty OPEN row first if
	// none exists. Concurrent calls for the same id yield one row.
	GetOrCreate(ctx context.Context, sessionID string) (*models.Session, error)

	// MergeFields writes the non-empty values in one statement. Slots are
	// never cleared. An all-empty set is a no-op.
	MergeFields(ctx context.Context, sessionID string, values models.FieldValues) error

	Fetch(ctx context.Context, sessionID string) (*models.Session, error)

	// MarkPhotoUploaded records a successful damage photo analysis.
	MarkPhotoUploaded(ctx context.Context, sessionID, damageReport string) error

	// MarkComplete latches status OPEN -> COMPLETE. It returns true only for
	// the call that performed the transition.
	MarkComplete(ctx context.Context, sessionID string) (bool, error)

	Ping(ctx context.Context) error
}

// column maps a required slot to its insurance_sessions column.
func column(f models.Field) (string, bool) {
	switch f {
	case models.FieldClaimantName:
		return "claimant_name", true
	case models.FieldPolicyNumber:
		return "policy_number", true
	case models.FieldIncidentDateTime:
		return "date_time_of_incident", true
	case models.FieldVehicleInfo:
		return "vehicle_info", true
	case models.FieldIncidentDescription:
		return "incident_description", true
	}
	return "", false
}
