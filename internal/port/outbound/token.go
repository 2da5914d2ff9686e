package outbound

import (
	"time"

	"github.com/google/uuid"
)

// TokenClaims is the identity carried by a bearer token.
type TokenClaims struct {
	AccountID uuid.UUID
	Email     string
	Admin     bool
}

// TokenPort issues and validates bearer tokens.
type TokenPort interface {
	Issue(accountID uuid.UUID, email string, admin bool) (token string, expiresAt time.Time, err error)
	Validate(token string) (*TokenClaims, error)
}
