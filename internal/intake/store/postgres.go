package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/common/logger"
	"claim-intake/internal/models"
)

const sessionColumns = `session_id, claimant_name, policy_number, date_time_of_incident,
	vehicle_info, incident_description, photo_uploaded, status, damage_report,
	created_at, updated_at`

// PostgresStore implements SessionStore on insurance_sessions.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresStore{db: db, logger: log}
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, sessionID string) (*models.Session, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insurance_sessions (session_id) VALUES ($1) ON CONFLICT (session_id) DO NOTHING`,
		sessionID,
	)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("create session", err)
	}
	return s.Fetch(ctx, sessionID)
}

func (s *PostgresStore) MergeFields(ctx context.Context, sessionID string, values models.FieldValues) error {
	query, args := buildMergeQuery(sessionID, values)
	if query == "" {
		return nil
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewStoreUnavailableError("merge fields", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewStoreUnavailableError("merge fields", err)
	}
	if n == 0 {
		return errors.NewSessionNotFoundError(sessionID)
	}

	s.logger.Debug("Session fields merged", map[string]interface{}{
		"sessionId": sessionID,
		"fields":    len(args) - 1,
	})
	return nil
}

// buildMergeQuery renders one UPDATE over the non-empty values, in canonical
// field order so identical writes produce identical SQL.
func buildMergeQuery(sessionID string, values models.FieldValues) (string, []interface{}) {
	var sets []string
	args := []interface{}{sessionID}

	for _, f := range models.RequiredFields {
		v := strings.TrimSpace(values[f])
		if v == "" {
			continue
		}
		col, ok := column(f)
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = COALESCE(NULLIF($%d, ''), %s)", col, len(args), col))
	}

	if len(sets) == 0 {
		return "", nil
	}
	sets = append(sets, "updated_at = NOW()")

	return fmt.Sprintf("UPDATE insurance_sessions SET %s WHERE session_id = $1", strings.Join(sets, ", ")), args
}

func (s *PostgresStore) Fetch(ctx context.Context, sessionID string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM insurance_sessions WHERE session_id = $1`,
		sessionID,
	)

	var sess models.Session
	var name, policy, when, vehicle, desc, damage sql.NullString
	var status string
	err := row.Scan(
		&sess.SessionID, &name, &policy, &when, &vehicle, &desc,
		&sess.PhotoUploaded, &status, &damage, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return nil, errors.NewStoreUnavailableError("fetch session", err)
	}

	sess.ClaimantName = name.String
	sess.PolicyNumber = policy.String
	sess.IncidentDateTime = when.String
	sess.VehicleInfo = vehicle.String
	sess.IncidentDescription = desc.String
	sess.DamageReport = damage.String
	sess.StoredStatus = models.SessionStatus(status)
	return &sess, nil
}

func (s *PostgresStore) MarkPhotoUploaded(ctx context.Context, sessionID, damageReport string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE insurance_sessions SET photo_uploaded = TRUE, damage_report = $2, updated_at = NOW() WHERE session_id = $1`,
		sessionID, damageReport,
	)
	if err != nil {
		return errors.NewStoreUnavailableError("mark photo uploaded", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewSessionNotFoundError(sessionID)
	}
	return nil
}

func (s *PostgresStore) MarkComplete(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE insurance_sessions SET status = 'COMPLETE', updated_at = NOW() WHERE session_id = $1 AND status = 'OPEN'`,
		sessionID,
	)
	if err != nil {
		return false, errors.NewStoreUnavailableError("mark complete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewStoreUnavailableError("mark complete", err)
	}
	return n == 1, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.NewStoreUnavailableError("ping", err)
	}
	return nil
}
