package audit

import "time"

// Event is an immutable, append-only audit record of an authorization
// decision or a role/approval mutation.
//
// Invariants:
// - Events are never updated or deleted.
// - Capture is best-effort; do not block critical flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorSubject is the authenticated subject causing the event.
	ActorSubject string `json:"actor_subject,omitempty" db:"actor_subject"`

	// TargetSubject is the subject whose role/approval/grant was affected.
	TargetSubject string `json:"target_subject,omitempty" db:"target_subject"`

	// Target identifiers (optional, depending on the event type).
	EventID string `json:"event_id,omitempty" db:"event_id"`
	GrantID string `json:"grant_id,omitempty" db:"grant_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeRoleChange     EventType = "role_change"
	EventTypeApprovalChange EventType = "approval_change"
	EventTypeGrantIssued    EventType = "grant_issued"
	EventTypeGrantFulfilled EventType = "grant_fulfilled"
	EventTypeGrantDenied    EventType = "grant_denied"
)
