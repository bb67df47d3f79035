package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends audit events.
//
// Assumed table: audit_events (id PK, type, actor_subject, target_subject,
// event_id, grant_id, message, metadata, created_at), INSERT-only.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, type, actor_subject, target_subject, event_id, grant_id, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Type,
		e.ActorSubject,
		e.TargetSubject,
		e.EventID,
		e.GrantID,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}
