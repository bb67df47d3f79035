package grant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eventops-platform/internal/auth"
	"eventops-platform/internal/config"
)

func newTestService(repo Repository, now time.Time) *Service {
	s := NewService(repo, config.GrantConfig{TTL: 10 * time.Minute, MaxFileNameLen: 64})
	s.clock = func() time.Time { return now }
	return s
}

func TestIssue_HappyPath(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := NewMemoryRepo()
	svc := newTestService(repo, now)

	out, err := svc.Issue(context.Background(), "subj-1", IssueRequest{
		EventID:     "e1",
		IncidentID:  "i1",
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if out.GrantID == "" {
		t.Fatalf("expected grant id")
	}
	if !out.ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("expected expiry at issuedAt+TTL, got %s", out.ExpiresAt)
	}

	// e1 and i1 appear as literal path components; nothing else from the
	// client appears beyond the allow-listed file name.
	parts := strings.Split(out.TargetPath, "/")
	if len(parts) != 6 || parts[0] != "events" || parts[1] != "e1" || parts[2] != "incidents" || parts[3] != "i1" || parts[5] != "photo.jpg" {
		t.Fatalf("unexpected target path layout: %q", out.TargetPath)
	}
	if parts[4] != out.GrantID {
		t.Fatalf("expected grant id path component, got %q", parts[4])
	}

	g, err := repo.GetByID(context.Background(), out.GrantID)
	if err != nil {
		t.Fatalf("persisted grant: %v", err)
	}
	if g.Fulfilled {
		t.Fatalf("fresh grant must be unfulfilled")
	}
	if g.OwnerSubject != "subj-1" {
		t.Fatalf("expected owner subj-1, got %q", g.OwnerSubject)
	}
}

func TestIssue_IdenticalRequestsGetDistinctGrants(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := NewMemoryRepo()
	svc := newTestService(repo, now)

	req := IssueRequest{EventID: "e1", IncidentID: "i1", FileName: "photo.jpg", ContentType: "image/jpeg"}

	a, err := svc.Issue(context.Background(), "subj-1", req)
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	b, err := svc.Issue(context.Background(), "subj-1", req)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if a.GrantID == b.GrantID {
		t.Fatalf("grant ids must differ")
	}
	if a.TargetPath == b.TargetPath {
		t.Fatalf("target paths must differ")
	}
}

func TestIssue_EmptySubjectUnauthenticated(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), time.Now())
	_, err := svc.Issue(context.Background(), "", IssueRequest{
		EventID: "e1", IncidentID: "i1", FileName: "p.jpg", ContentType: "image/jpeg",
	})
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestIssue_RejectsNonImageContentType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, time.Now())

	for _, ct := range []string{"application/pdf", "text/html", "image/", ""} {
		_, err := svc.Issue(context.Background(), "subj-1", IssueRequest{
			EventID: "e1", IncidentID: "i1", FileName: "p.jpg", ContentType: ct,
		})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("content type %q: expected ErrInvalidRequest, got %v", ct, err)
		}
	}

	// Nothing persisted on rejection.
	if _, err := repo.GetByPath(context.Background(), "events/e1/incidents/i1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected empty repo")
	}
}

func TestIssue_RejectsTraversalSegments(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), time.Now())

	bad := []IssueRequest{
		{EventID: "../e1", IncidentID: "i1", FileName: "p.jpg", ContentType: "image/jpeg"},
		{EventID: "e1", IncidentID: "i1/../../x", FileName: "p.jpg", ContentType: "image/jpeg"},
		{EventID: "e1", IncidentID: "i1", FileName: "..%2fp.jpg", ContentType: "image/jpeg"},
		{EventID: "e1", IncidentID: "i1", FileName: ".hidden", ContentType: "image/jpeg"},
		{EventID: "e1", IncidentID: "i1", FileName: "p..jpg", ContentType: "image/jpeg"},
		{EventID: "e1", IncidentID: "i1", FileName: "", ContentType: "image/jpeg"},
		{EventID: "", IncidentID: "i1", FileName: "p.jpg", ContentType: "image/jpeg"},
		{EventID: "e1", IncidentID: "i1", FileName: strings.Repeat("a", 70) + ".jpg", ContentType: "image/jpeg"},
	}
	for _, req := range bad {
		if _, err := svc.Issue(context.Background(), "subj-1", req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("request %+v: expected ErrInvalidRequest, got %v", req, err)
		}
	}
}

func TestLive_ExpiryIsImplicit(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	g := UploadGrant{IssuedAt: now, ExpiresAt: now.Add(10 * time.Minute)}

	if !g.Live(now.Add(10 * time.Minute)) {
		t.Fatalf("grant should be live at the boundary")
	}
	if g.Live(now.Add(10*time.Minute + time.Second)) {
		t.Fatalf("grant past expiry must not be live even if never marked expired")
	}

	g.Fulfilled = true
	if g.Live(now) {
		t.Fatalf("fulfilled grant must not be live")
	}
}
