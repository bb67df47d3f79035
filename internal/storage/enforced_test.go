package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"eventops-platform/internal/config"
	"eventops-platform/internal/grant"
)

type memWriter struct {
	objects map[string][]byte
}

func (w *memWriter) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	if w.objects == nil {
		w.objects = make(map[string][]byte)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	w.objects[objectName] = b
	return nil
}

func issueGrant(t *testing.T, repo grant.Repository, subject string, now time.Time) grant.Issued {
	t.Helper()
	svc := grant.NewService(repo, config.GrantConfig{TTL: 10 * time.Minute})
	out, err := svc.Issue(context.Background(), subject, grant.IssueRequest{
		EventID:     "e1",
		IncidentID:  "i1",
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return out
}

func TestEnforcedPut_WritesOnlyGrantedPath(t *testing.T) {
	repo := grant.NewMemoryRepo()
	issued := issueGrant(t, repo, "subj-1", time.Now())
	w := &memWriter{}
	store := NewEnforcedStore(grant.NewEnforcer(repo), w)

	payload := []byte("jpeg bytes")
	g, err := store.Put(context.Background(), "subj-1", issued.TargetPath, "image/jpeg", bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !g.Fulfilled {
		t.Fatalf("expected spent grant")
	}
	if !bytes.Equal(w.objects[issued.TargetPath], payload) {
		t.Fatalf("expected bytes at granted path")
	}

	// Any other destination has no grant and must not be written.
	other := strings.Replace(issued.TargetPath, "photo.jpg", "other.jpg", 1)
	if _, err := store.Put(context.Background(), "subj-1", other, "image/jpeg", bytes.NewReader(payload), int64(len(payload))); !errors.Is(err, grant.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for ungranted path, got %v", err)
	}
	if _, ok := w.objects[other]; ok {
		t.Fatalf("ungranted path must not be written")
	}
}

func TestEnforcedPut_SecondWriteDenied(t *testing.T) {
	repo := grant.NewMemoryRepo()
	issued := issueGrant(t, repo, "subj-1", time.Now())
	w := &memWriter{}
	store := NewEnforcedStore(grant.NewEnforcer(repo), w)

	payload := []byte("x")
	if _, err := store.Put(context.Background(), "subj-1", issued.TargetPath, "image/jpeg", bytes.NewReader(payload), 1); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(context.Background(), "subj-1", issued.TargetPath, "image/jpeg", bytes.NewReader(payload), 1); !errors.Is(err, grant.ErrAlreadyFulfilled) {
		t.Fatalf("expected ErrAlreadyFulfilled, got %v", err)
	}
}

func TestEnforcedPut_DeniedBeforeBytesMove(t *testing.T) {
	repo := grant.NewMemoryRepo()
	issued := issueGrant(t, repo, "subj-S", time.Now())
	w := &memWriter{}
	store := NewEnforcedStore(grant.NewEnforcer(repo), w)

	payload := []byte("x")
	if _, err := store.Put(context.Background(), "subj-T", issued.TargetPath, "image/jpeg", bytes.NewReader(payload), 1); !errors.Is(err, grant.ErrOwnerMismatch) {
		t.Fatalf("expected ErrOwnerMismatch, got %v", err)
	}
	if len(w.objects) != 0 {
		t.Fatalf("denied write must not reach storage")
	}
}
