package grant

import (
	"errors"
	"time"
)

// UploadGrant is a single-use, time-boxed, path-bound permission to write one
// object to storage. The grant id doubles as the capability token, so it must
// be unguessable; the target path is derived, never client-supplied verbatim.
//
// Invariants:
// - created exactly once per upload attempt; target paths are never reused
// - Fulfilled is monotonic (false -> true only)
// - past ExpiresAt the grant is denied regardless of Fulfilled
type UploadGrant struct {
	ID           string    `json:"id" db:"id"`
	OwnerSubject string    `json:"owner_subject" db:"owner_subject"`
	EventID      string    `json:"event_id" db:"event_id"`
	IncidentID   string    `json:"incident_id" db:"incident_id"`
	FileName     string    `json:"file_name" db:"file_name"`
	TargetPath   string    `json:"target_path" db:"target_path"`
	ContentType  string    `json:"content_type" db:"content_type"`
	IssuedAt     time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	Fulfilled    bool      `json:"fulfilled" db:"fulfilled"`

	// FulfilledAt is zero until the write-completion transition.
	FulfilledAt time.Time `json:"fulfilled_at,omitempty" db:"fulfilled_at"`
}

// Live reports whether the grant can still authorize a write at the given
// instant. Expiry is implicit: no transition write is needed.
func (g UploadGrant) Live(at time.Time) bool {
	return !g.Fulfilled && !at.After(g.ExpiresAt)
}

var (
	// ErrInvalidRequest covers malformed issuance requests: missing fields,
	// disallowed content type, or path segments outside the allow-list.
	ErrInvalidRequest = errors.New("invalid grant request")

	ErrNotFound = errors.New("grant not found")

	// ErrExpired and ErrAlreadyFulfilled mean the grant is no longer usable;
	// the caller should request a new upload slot.
	ErrExpired          = errors.New("grant expired")
	ErrAlreadyFulfilled = errors.New("grant already fulfilled")

	// ErrOwnerMismatch: the uploading subject is not the grant owner.
	ErrOwnerMismatch = errors.New("grant owner mismatch")

	// ErrContentTypeMismatch: the write declares a different media type than
	// the grant was issued for.
	ErrContentTypeMismatch = errors.New("grant content type mismatch")
)
