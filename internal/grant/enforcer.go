package grant

import (
	"context"
	"time"
)

// Enforcer is the storage-layer authorization contract: every direct write is
// re-validated against its grant, independently of the issuing service. The
// storage adapter must call Authorize before committing bytes.
type Enforcer interface {
	// Authorize allows the write iff the path has a grant owned by subject,
	// not expired at the given instant, with a matching content type, and not
	// yet fulfilled. On success the grant is atomically marked fulfilled as
	// part of the same decision and the updated grant is returned.
	Authorize(ctx context.Context, subject, path, contentType string, at time.Time) (UploadGrant, error)
}

// OnceGuard serializes the fulfillment transition across processes. The
// repository CAS is already authoritative; the guard shortcut keeps losing
// nodes from hitting the database on multi-node deployments.
type OnceGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RepoEnforcer enforces grants against the Repository.
type RepoEnforcer struct {
	repo  Repository
	guard OnceGuard // optional
}

func NewEnforcer(repo Repository) *RepoEnforcer {
	return &RepoEnforcer{repo: repo}
}

func NewGuardedEnforcer(repo Repository, guard OnceGuard) *RepoEnforcer {
	return &RepoEnforcer{repo: repo, guard: guard}
}

func (e *RepoEnforcer) Authorize(ctx context.Context, subject, path, contentType string, at time.Time) (UploadGrant, error) {
	g, err := e.repo.GetByPath(ctx, path)
	if err != nil {
		return UploadGrant{}, err
	}

	// Check order matters only for error reporting; every branch denies.
	if subject == "" || subject != g.OwnerSubject {
		return UploadGrant{}, ErrOwnerMismatch
	}
	if at.After(g.ExpiresAt) {
		return UploadGrant{}, ErrExpired
	}
	if contentType != g.ContentType {
		return UploadGrant{}, ErrContentTypeMismatch
	}
	if g.Fulfilled {
		return UploadGrant{}, ErrAlreadyFulfilled
	}

	if e.guard != nil {
		// Keep the guard key alive at least as long as the grant itself.
		ttl := g.ExpiresAt.Sub(at) + time.Minute
		ok, err := e.guard.Acquire(ctx, "grant_fulfill:"+g.ID, ttl)
		if err != nil {
			return UploadGrant{}, err
		}
		if !ok {
			return UploadGrant{}, ErrAlreadyFulfilled
		}
	}

	won, err := e.repo.MarkFulfilled(ctx, g.ID, at)
	if err != nil {
		if e.guard != nil {
			// The transition did not take effect; let a retry through.
			_ = e.guard.Release(ctx, "grant_fulfill:"+g.ID)
		}
		return UploadGrant{}, err
	}
	if !won {
		return UploadGrant{}, ErrAlreadyFulfilled
	}

	g.Fulfilled = true
	g.FulfilledAt = at
	return g, nil
}
