package admin

import (
	"context"
	"errors"

	"eventops-platform/internal/audit"
	"eventops-platform/internal/rbac"
)

// RoleDirectory is the mutation half of the externally-owned role/approval
// records. RoleResolver only ever reads them; all writes come through here.
type RoleDirectory interface {
	UpsertAccountRole(ctx context.Context, subjectID string, role rbac.AccountRole) error
	UpsertEventRole(ctx context.Context, subjectID, eventID string, role rbac.EventRole, sub rbac.EventSubRole) error
	SetApproval(ctx context.Context, subjectID, eventID string, approved bool) error
}

var (
	// ErrUnauthorized: the actor is verified but not permitted to decide.
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidArgument = errors.New("invalid argument")
)

// Service applies role and approval mutations on behalf of the admin console.
// Every mutation re-resolves the actor's access at call time and appends an
// audit event.
type Service struct {
	dir      RoleDirectory
	resolver *rbac.Resolver
	engine   *rbac.Engine
	audit    *audit.Service
}

func NewService(dir RoleDirectory, resolver *rbac.Resolver, engine *rbac.Engine, auditSvc *audit.Service) *Service {
	return &Service{dir: dir, resolver: resolver, engine: engine, audit: auditSvc}
}

// SetAccountRole changes a subject's account-wide role.
// Admin-or-above only, and never self-assigned.
func (s *Service) SetAccountRole(ctx context.Context, actorSubject, targetSubject string, role rbac.AccountRole) error {
	if targetSubject == "" {
		return ErrInvalidArgument
	}
	if _, ok := rbac.ParseAccountRole(string(role)); !ok {
		return ErrInvalidArgument
	}
	if actorSubject == targetSubject {
		return ErrUnauthorized
	}
	if err := s.requireAction(ctx, actorSubject, "", rbac.ActionRolesManage); err != nil {
		return err
	}

	if err := s.dir.UpsertAccountRole(ctx, targetSubject, role); err != nil {
		return err
	}
	s.logRoleChange(ctx, actorSubject, targetSubject, "", "account role set to "+string(role))
	return nil
}

// SetEventRole assigns an event-scoped role (with optional crew sub-role).
func (s *Service) SetEventRole(ctx context.Context, actorSubject, targetSubject, eventID string, role rbac.EventRole, sub rbac.EventSubRole) error {
	if targetSubject == "" || eventID == "" {
		return ErrInvalidArgument
	}
	if _, ok := rbac.ParseEventRole(string(role)); !ok {
		return ErrInvalidArgument
	}
	if sub != "" {
		if role != rbac.EventRoleCrew {
			return ErrInvalidArgument
		}
		if _, ok := rbac.ParseEventSubRole(string(sub)); !ok {
			return ErrInvalidArgument
		}
	}
	if err := s.requireAction(ctx, actorSubject, eventID, rbac.ActionRolesManage); err != nil {
		return err
	}

	if err := s.dir.UpsertEventRole(ctx, targetSubject, eventID, role, sub); err != nil {
		return err
	}
	s.logRoleChange(ctx, actorSubject, targetSubject, eventID, "event role set to "+string(role))
	return nil
}

// DecideApproval sets or revokes a subject's per-event approval. Revocation
// resets the flag; the decision history is the audit trail.
func (s *Service) DecideApproval(ctx context.Context, actorSubject, targetSubject, eventID string, approved bool) error {
	if targetSubject == "" || eventID == "" {
		return ErrInvalidArgument
	}
	if err := s.requireAction(ctx, actorSubject, eventID, rbac.ActionApprovalsDecide); err != nil {
		return err
	}

	if err := s.dir.SetApproval(ctx, targetSubject, eventID, approved); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.LogApprovalChange(ctx, actorSubject, targetSubject, eventID, approved)
	}
	return nil
}

func (s *Service) requireAction(ctx context.Context, actorSubject, eventID string, action rbac.Action) error {
	ac, err := s.resolver.Resolve(ctx, actorSubject, eventID)
	if err != nil {
		return err
	}
	if !s.engine.Allows(action, ac) {
		return ErrUnauthorized
	}
	return nil
}

func (s *Service) logRoleChange(ctx context.Context, actor, target, eventID, msg string) {
	if s.audit == nil {
		return
	}
	// Best-effort; mutations do not fail on audit errors.
	_ = s.audit.LogRoleChange(ctx, actor, target, eventID, msg)
}
