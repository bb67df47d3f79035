package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// The token carries identity only: the stable subject id and the account email.
// Roles and approvals are never embedded in the credential; they are resolved
// server-side per request so revocations take effect immediately.
type Claims struct {
	jwt.RegisteredClaims

	SubjectID string    `json:"subject_id"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"token_type"`
}
