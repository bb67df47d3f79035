package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records the authorization trail.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to end users by default.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ActorSubject == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogRoleChange records an account or event role mutation.
func (s *Service) LogRoleChange(ctx context.Context, actorSubject, targetSubject, eventID, message string) error {
	return s.Append(ctx, Event{
		Type:          EventTypeRoleChange,
		ActorSubject:  actorSubject,
		TargetSubject: targetSubject,
		EventID:       eventID,
		Message:       message,
	})
}

// LogApprovalChange records an approval decision or revocation. History of
// the flag lives here; the approval row itself only holds the latest state.
func (s *Service) LogApprovalChange(ctx context.Context, actorSubject, targetSubject, eventID string, approved bool) error {
	msg := "approval revoked"
	if approved {
		msg = "approval granted"
	}
	return s.Append(ctx, Event{
		Type:          EventTypeApprovalChange,
		ActorSubject:  actorSubject,
		TargetSubject: targetSubject,
		EventID:       eventID,
		Message:       msg,
	})
}

// LogGrant records an upload-grant lifecycle event.
func (s *Service) LogGrant(ctx context.Context, typ EventType, subject, eventID, grantID, message string) error {
	return s.Append(ctx, Event{
		Type:         typ,
		ActorSubject: subject,
		EventID:      eventID,
		GrantID:      grantID,
		Message:      message,
	})
}
