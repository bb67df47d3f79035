package storage

import (
	"context"
	"io"
	"time"

	"eventops-platform/internal/grant"
)

// ObjectWriter is the raw write capability the enforcer gates.
type ObjectWriter interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
}

// EnforcedStore is the only write path into the bucket. Every write is
// authorized against its upload grant first; the grant is spent by the same
// decision, so a second write to the granted path cannot succeed even if it
// races the first.
type EnforcedStore struct {
	enforcer grant.Enforcer
	writer   ObjectWriter
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewEnforcedStore(enforcer grant.Enforcer, writer ObjectWriter) *EnforcedStore {
	return &EnforcedStore{enforcer: enforcer, writer: writer, clock: time.Now}
}

// Put validates (subject, path, contentType, now) against the outstanding
// grant and commits the bytes only on an allow decision.
func (s *EnforcedStore) Put(ctx context.Context, subject, path, contentType string, r io.Reader, size int64) (grant.UploadGrant, error) {
	g, err := s.enforcer.Authorize(ctx, subject, path, contentType, s.clock().UTC())
	if err != nil {
		return grant.UploadGrant{}, err
	}
	if err := s.writer.Put(ctx, path, r, size, contentType); err != nil {
		// The grant is spent; the client must request a new slot. This keeps
		// fulfillment monotonic instead of reopening a window for a racer.
		return grant.UploadGrant{}, err
	}
	return g, nil
}
