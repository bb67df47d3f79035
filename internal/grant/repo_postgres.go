package grant

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo persists grants.
//
// Assumed table:
// - upload_grants (id PK, owner_subject, event_id, incident_id, file_name,
//   target_path UNIQUE, content_type, issued_at, expires_at, fulfilled,
//   fulfilled_at NULL)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Insert(ctx context.Context, g UploadGrant) error {
	const q = `
INSERT INTO upload_grants (
  id, owner_subject, event_id, incident_id, file_name, target_path,
  content_type, issued_at, expires_at, fulfilled
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := r.db.ExecContext(ctx, q,
		g.ID,
		g.OwnerSubject,
		g.EventID,
		g.IncidentID,
		g.FileName,
		g.TargetPath,
		g.ContentType,
		g.IssuedAt,
		g.ExpiresAt,
		g.Fulfilled,
	)
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (UploadGrant, error) {
	const q = `
SELECT id, owner_subject, event_id, incident_id, file_name, target_path,
       content_type, issued_at, expires_at, fulfilled, fulfilled_at
FROM upload_grants
WHERE id = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByPath(ctx context.Context, targetPath string) (UploadGrant, error) {
	const q = `
SELECT id, owner_subject, event_id, incident_id, file_name, target_path,
       content_type, issued_at, expires_at, fulfilled, fulfilled_at
FROM upload_grants
WHERE target_path = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, targetPath))
}

// MarkFulfilled is the atomic check-and-set: the WHERE clause makes the
// database arbitrate concurrent fulfillment attempts, so exactly one wins.
func (r *PostgresRepo) MarkFulfilled(ctx context.Context, id string, at time.Time) (bool, error) {
	const q = `
UPDATE upload_grants
SET fulfilled = TRUE, fulfilled_at = $2
WHERE id = $1 AND fulfilled = FALSE
`
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PostgresRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
DELETE FROM upload_grants
WHERE expires_at < $1
`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepo) scanOne(row *sql.Row) (UploadGrant, error) {
	var g UploadGrant
	var fulfilledAt sql.NullTime
	err := row.Scan(
		&g.ID,
		&g.OwnerSubject,
		&g.EventID,
		&g.IncidentID,
		&g.FileName,
		&g.TargetPath,
		&g.ContentType,
		&g.IssuedAt,
		&g.ExpiresAt,
		&g.Fulfilled,
		&fulfilledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UploadGrant{}, ErrNotFound
		}
		return UploadGrant{}, err
	}
	if fulfilledAt.Valid {
		g.FulfilledAt = fulfilledAt.Time
	}
	return g, nil
}
