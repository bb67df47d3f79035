package rbac

import (
	"context"
	"time"

	"eventops-platform/internal/auth"
)

// Role and approval records are externally owned; the resolver only reads
// them. Stores report "no record" as a zero value, not an error, so a missing
// assignment never aborts a check, it simply grants nothing.

type AccountRoleStore interface {
	// AccountRole returns the subject's account role, or AccountRoleUser
	// when no record exists.
	AccountRole(ctx context.Context, subjectID string) (AccountRole, error)
}

type EventRoleStore interface {
	// EventRole returns the subject's assignment for the event.
	// ok is false when no assignment exists.
	EventRole(ctx context.Context, subjectID, eventID string) (role EventRole, sub EventSubRole, ok bool, err error)
}

type ApprovalStore interface {
	// Approved returns the per-(subject, event) approval flag, default false.
	Approved(ctx context.Context, subjectID, eventID string) (bool, error)
}

// Resolver builds an AccessContext per authorization check. It holds no
// cached state: every call reads the stores, so revocations are visible to
// concurrent checks immediately.
type Resolver struct {
	accounts   AccountRoleStore
	eventRoles EventRoleStore
	approvals  ApprovalStore

	// timeout bounds the store reads; on expiry the check fails closed.
	timeout time.Duration
}

func NewResolver(accounts AccountRoleStore, eventRoles EventRoleStore, approvals ApprovalStore) *Resolver {
	return &Resolver{
		accounts:   accounts,
		eventRoles: eventRoles,
		approvals:  approvals,
		timeout:    3 * time.Second,
	}
}

// Resolve projects the subject's roles into an AccessContext.
// eventID may be empty; the result then carries no event scope.
func (r *Resolver) Resolve(ctx context.Context, subjectID, eventID string) (AccessContext, error) {
	if subjectID == "" {
		return AccessContext{}, auth.ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	accountRole, err := r.accounts.AccountRole(ctx, subjectID)
	if err != nil {
		return AccessContext{}, err
	}
	if accountRole == "" {
		accountRole = AccountRoleUser
	}

	ac := AccessContext{AccountRole: accountRole}
	if eventID == "" {
		return ac, nil
	}

	role, sub, ok, err := r.eventRoles.EventRole(ctx, subjectID, eventID)
	if err != nil {
		return AccessContext{}, err
	}
	approved, err := r.approvals.Approved(ctx, subjectID, eventID)
	if err != nil {
		return AccessContext{}, err
	}

	scope := &EventScope{Approved: approved}
	if ok {
		scope.Role = role
		scope.SubRole = sub
	}
	ac.Event = scope
	return ac, nil
}
