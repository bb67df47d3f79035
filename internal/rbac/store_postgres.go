package rbac

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresStore reads and writes role/approval records.
//
// Assumed tables:
// - account_roles (subject_id PK, role, updated_at)
// - event_roles (subject_id, event_id, role, sub_role, updated_at;
//   UNIQUE (subject_id, event_id))
// - event_approvals (subject_id, event_id, approved, decided_by, decided_at;
//   UNIQUE (subject_id, event_id))
type PostgresStore struct {
	db *sql.DB
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

func (s *PostgresStore) AccountRole(ctx context.Context, subjectID string) (AccountRole, error) {
	const q = `
SELECT role
FROM account_roles
WHERE subject_id = $1
`
	var role string
	if err := s.db.QueryRowContext(ctx, q, subjectID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AccountRoleUser, nil
		}
		return "", err
	}
	r, ok := ParseAccountRole(role)
	if !ok {
		// Corrupted record must not elevate; treat as plain user.
		return AccountRoleUser, nil
	}
	return r, nil
}

func (s *PostgresStore) EventRole(ctx context.Context, subjectID, eventID string) (EventRole, EventSubRole, bool, error) {
	const q = `
SELECT role, sub_role
FROM event_roles
WHERE subject_id = $1 AND event_id = $2
`
	var role, sub string
	if err := s.db.QueryRowContext(ctx, q, subjectID, eventID).Scan(&role, &sub); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	r, ok := ParseEventRole(role)
	if !ok {
		return "", "", false, nil
	}
	sr, _ := ParseEventSubRole(sub)
	return r, sr, true, nil
}

func (s *PostgresStore) Approved(ctx context.Context, subjectID, eventID string) (bool, error) {
	const q = `
SELECT approved
FROM event_approvals
WHERE subject_id = $1 AND event_id = $2
`
	var approved bool
	if err := s.db.QueryRowContext(ctx, q, subjectID, eventID).Scan(&approved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func (s *PostgresStore) UpsertAccountRole(ctx context.Context, subjectID string, role AccountRole) error {
	const q = `
INSERT INTO account_roles (subject_id, role, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (subject_id)
DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
`
	_, err := s.db.ExecContext(ctx, q, subjectID, string(role), s.clock().UTC())
	return err
}

func (s *PostgresStore) UpsertEventRole(ctx context.Context, subjectID, eventID string, role EventRole, sub EventSubRole) error {
	const q = `
INSERT INTO event_roles (subject_id, event_id, role, sub_role, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (subject_id, event_id)
DO UPDATE SET role = EXCLUDED.role, sub_role = EXCLUDED.sub_role, updated_at = EXCLUDED.updated_at
`
	_, err := s.db.ExecContext(ctx, q, subjectID, eventID, string(role), string(sub), s.clock().UTC())
	return err
}

func (s *PostgresStore) SetApproval(ctx context.Context, subjectID, eventID string, approved bool) error {
	// Revocation flips the flag in place; the row is never deleted, so the
	// decided_at trail survives. Full history lives in the audit log.
	const q = `
INSERT INTO event_approvals (subject_id, event_id, approved, decided_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (subject_id, event_id)
DO UPDATE SET approved = EXCLUDED.approved, decided_at = EXCLUDED.decided_at
`
	_, err := s.db.ExecContext(ctx, q, subjectID, eventID, approved, s.clock().UTC())
	return err
}
