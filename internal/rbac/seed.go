package rbac

import (
	"context"
	"errors"
)

// AccountRoleWriter is the mutation half of the account role directory.
type AccountRoleWriter interface {
	UpsertAccountRole(ctx context.Context, subjectID string, role AccountRole) error
}

// SeedAccountRole grants an account role to the subject identified by email.
// This is a non-production bootstrap convenience: dev-issued tokens use the
// account email as the subject id, so the seeded row lines up with what the
// resolver reads. It must only be invoked from startup wiring outside
// production, never from resolution logic.
func SeedAccountRole(ctx context.Context, w AccountRoleWriter, email string, role AccountRole) error {
	if email == "" {
		return errors.New("rbac: seed email is required")
	}
	if _, ok := ParseAccountRole(string(role)); !ok {
		return errors.New("rbac: seed role is invalid")
	}
	return w.UpsertAccountRole(ctx, email, role)
}
