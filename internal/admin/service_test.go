package admin

import (
	"context"
	"errors"
	"testing"

	"eventops-platform/internal/audit"
	"eventops-platform/internal/rbac"
)

func newFixture(t *testing.T) (*Service, *rbac.MemoryStore, *audit.MemoryRepo) {
	t.Helper()
	store := rbac.NewMemoryStore()
	auditRepo := audit.NewMemoryRepo()
	svc := NewService(store, rbac.NewResolver(store, store, store), rbac.NewEngine(), audit.NewService(auditRepo))
	return svc, store, auditRepo
}

func TestSetAccountRole_RequiresAdmin(t *testing.T) {
	svc, store, _ := newFixture(t)
	ctx := context.Background()

	if err := svc.SetAccountRole(ctx, "actor-1", "target-1", rbac.AccountRoleSupport); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for plain user actor, got %v", err)
	}

	_ = store.UpsertAccountRole(ctx, "actor-1", rbac.AccountRoleAdmin)
	if err := svc.SetAccountRole(ctx, "actor-1", "target-1", rbac.AccountRoleSupport); err != nil {
		t.Fatalf("admin actor: %v", err)
	}

	got, _ := store.AccountRole(ctx, "target-1")
	if got != rbac.AccountRoleSupport {
		t.Fatalf("expected support, got %s", got)
	}
}

func TestSetAccountRole_NeverSelfAssigned(t *testing.T) {
	svc, store, _ := newFixture(t)
	ctx := context.Background()
	_ = store.UpsertAccountRole(ctx, "actor-1", rbac.AccountRoleSuperadmin)

	if err := svc.SetAccountRole(ctx, "actor-1", "actor-1", rbac.AccountRoleSuperadmin); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected self-assignment rejection, got %v", err)
	}
}

func TestSetEventRole_ValidatesSubRolePairing(t *testing.T) {
	svc, store, _ := newFixture(t)
	ctx := context.Background()
	_ = store.UpsertAccountRole(ctx, "actor-1", rbac.AccountRoleAdmin)

	if err := svc.SetEventRole(ctx, "actor-1", "t1", "e1", rbac.EventRoleVideo, rbac.SubRoleRadio); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("sub-role on non-crew must be rejected, got %v", err)
	}
	if err := svc.SetEventRole(ctx, "actor-1", "t1", "e1", rbac.EventRoleCrew, rbac.SubRoleRadio); err != nil {
		t.Fatalf("crew with sub-role: %v", err)
	}

	role, sub, ok, _ := store.EventRole(ctx, "t1", "e1")
	if !ok || role != rbac.EventRoleCrew || sub != rbac.SubRoleRadio {
		t.Fatalf("unexpected assignment: %s %s %v", role, sub, ok)
	}
}

func TestDecideApproval_SafetyLeadCanDecideOwnEventOnly(t *testing.T) {
	svc, store, auditRepo := newFixture(t)
	ctx := context.Background()
	_ = store.UpsertEventRole(ctx, "lead-1", "e1", rbac.EventRoleSafetyLead, "")

	if err := svc.DecideApproval(ctx, "lead-1", "crew-9", "e1", true); err != nil {
		t.Fatalf("decide on own event: %v", err)
	}
	approved, _ := store.Approved(ctx, "crew-9", "e1")
	if !approved {
		t.Fatalf("expected approval set")
	}

	if err := svc.DecideApproval(ctx, "lead-1", "crew-9", "e2", true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected deny on other event, got %v", err)
	}

	// Revocation resets the flag and appends history.
	if err := svc.DecideApproval(ctx, "lead-1", "crew-9", "e1", false); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	approved, _ = store.Approved(ctx, "crew-9", "e1")
	if approved {
		t.Fatalf("expected approval revoked")
	}
	if len(auditRepo.Events()) != 2 {
		t.Fatalf("expected grant+revoke audit trail, got %d events", len(auditRepo.Events()))
	}
}
