package userauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed, time-bounded proof of identity issued at
// login. The email is a snapshot taken at issuance; it does not track
// later profile changes, and validity is never re-checked against the
// store for email equality.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// UserID returns the subject, the identifier of the credential record the
// claims were minted for.
func (c *SessionClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time.
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issuance time.
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// IsExpired is a pure clock comparison. Decode success only proves
// authenticity; callers must check this explicitly. Claims without an
// expiration fail closed.
func (c *SessionClaims) IsExpired() bool {
	if c.RegisteredClaims.ExpiresAt == nil {
		return true
	}
	return time.Now().After(c.RegisteredClaims.ExpiresAt.Time)
}
