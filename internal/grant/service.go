package grant

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"eventops-platform/internal/auth"
	"eventops-platform/internal/config"
)

// Repository is the persistence contract for upload grants.
//
// Grants are never deleted synchronously; DeleteExpiredBefore exists for an
// out-of-process sweep and nothing in the request path calls it.
type Repository interface {
	Insert(ctx context.Context, g UploadGrant) error
	GetByID(ctx context.Context, id string) (UploadGrant, error)
	GetByPath(ctx context.Context, targetPath string) (UploadGrant, error)

	// MarkFulfilled performs the atomic false->true transition. It returns
	// false when the grant was already fulfilled; the caller must treat that
	// as a denied write, not an error.
	MarkFulfilled(ctx context.Context, id string, at time.Time) (bool, error)

	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// allowedMediaFamily is the only media-type family grants are issued for.
const allowedMediaFamily = "image/"

// Path segments are validated against this allow-list before concatenation.
// Slashes are excluded by construction; dot sequences are rejected separately.
var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

const maxSegmentLen = 64

type IssueRequest struct {
	EventID     string `json:"event_id"`
	IncidentID  string `json:"incident_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// Issued is what the caller gets back. TargetPath is the sole permissible
// destination; there is no wildcard or prefix form.
type Issued struct {
	GrantID    string    `json:"grant_id"`
	TargetPath string    `json:"target_path"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Service issues upload grants.
//
// Issuance needs no lock: concurrent requests for the same (event, incident,
// file name) each allocate an independent grant id and target path. The only
// contended transition is fulfillment, which lives in the Enforcer.
type Service struct {
	repo           Repository
	ttl            time.Duration
	maxFileNameLen int
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, cfg config.GrantConfig) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	maxName := cfg.MaxFileNameLen
	if maxName <= 0 {
		maxName = 128
	}
	return &Service{
		repo:           repo,
		ttl:            ttl,
		maxFileNameLen: maxName,
		clock:          time.Now,
	}
}

// Issue validates the request and persists a fresh grant. Validation failures
// reject fast with ErrInvalidRequest and persist nothing.
func (s *Service) Issue(ctx context.Context, subject string, req IssueRequest) (Issued, error) {
	if subject == "" {
		return Issued{}, auth.ErrUnauthenticated
	}
	if err := s.validate(req); err != nil {
		return Issued{}, err
	}

	now := s.clock().UTC()
	id, err := newGrantID(now)
	if err != nil {
		return Issued{}, fmt.Errorf("grant id generation: %w", err)
	}

	g := UploadGrant{
		ID:           id,
		OwnerSubject: subject,
		EventID:      req.EventID,
		IncidentID:   req.IncidentID,
		FileName:     req.FileName,
		TargetPath:   targetPath(req.EventID, req.IncidentID, id, req.FileName),
		ContentType:  req.ContentType,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Insert(ctx, g); err != nil {
		return Issued{}, err
	}

	return Issued{GrantID: g.ID, TargetPath: g.TargetPath, ExpiresAt: g.ExpiresAt}, nil
}

func (s *Service) Get(ctx context.Context, id string) (UploadGrant, error) {
	if id == "" {
		return UploadGrant{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) validate(req IssueRequest) error {
	if err := validateSegment("event_id", req.EventID, maxSegmentLen); err != nil {
		return err
	}
	if err := validateSegment("incident_id", req.IncidentID, maxSegmentLen); err != nil {
		return err
	}
	if err := validateSegment("file_name", req.FileName, s.maxFileNameLen); err != nil {
		return err
	}

	ct := req.ContentType
	if ct == "" {
		return fmt.Errorf("%w: content_type is required", ErrInvalidRequest)
	}
	if !strings.HasPrefix(ct, allowedMediaFamily) || len(ct) == len(allowedMediaFamily) {
		return fmt.Errorf("%w: content_type must be %s*", ErrInvalidRequest, allowedMediaFamily)
	}
	return nil
}

func validateSegment(field, v string, maxLen int) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	if len(v) > maxLen {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidRequest, field, maxLen)
	}
	if !segmentPattern.MatchString(v) {
		return fmt.Errorf("%w: %s contains disallowed characters", ErrInvalidRequest, field)
	}
	if strings.HasPrefix(v, ".") || strings.Contains(v, "..") {
		return fmt.Errorf("%w: %s contains a dot sequence", ErrInvalidRequest, field)
	}
	return nil
}

// targetPath derives the storage destination. The grant id component makes
// two grants for identical request fields land on distinct paths.
func targetPath(eventID, incidentID, grantID, fileName string) string {
	return fmt.Sprintf("events/%s/incidents/%s/%s/%s", eventID, incidentID, grantID, fileName)
}

// newGrantID combines a secure random body with a millisecond timestamp
// component. Sequential or time-only ids are not acceptable: a guessable id
// plus the deterministic path layout would let one subject target another's
// pending upload.
func newGrantID(now time.Time) (string, error) {
	var buf [18]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf[:]) + "-" + strconv.FormatInt(now.UnixMilli(), 36), nil
}
