package grant

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory grant store useful for tests and local runs.
// It is not intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	byID   map[string]UploadGrant
	byPath map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]UploadGrant),
		byPath: make(map[string]string),
	}
}

func (r *MemoryRepo) Insert(ctx context.Context, g UploadGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[g.ID] = g
	r.byPath[g.TargetPath] = g.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (UploadGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byID[id]
	if !ok {
		return UploadGrant{}, ErrNotFound
	}
	return g, nil
}

func (r *MemoryRepo) GetByPath(ctx context.Context, targetPath string) (UploadGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPath[targetPath]
	if !ok {
		return UploadGrant{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepo) MarkFulfilled(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if g.Fulfilled {
		return false, nil
	}
	g.Fulfilled = true
	g.FulfilledAt = at
	r.byID[id] = g
	return true, nil
}

func (r *MemoryRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, g := range r.byID {
		if g.ExpiresAt.Before(cutoff) {
			delete(r.byID, id)
			delete(r.byPath, g.TargetPath)
			n++
		}
	}
	return n, nil
}
