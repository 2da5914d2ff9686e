package middleware

import (
	"strings"

	"github.com/ariachat/server/internal/port/outbound"
	apperrors "github.com/ariachat/server/internal/utils/errors"
	"github.com/ariachat/server/internal/utils/requestctx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// AccountIDKey is the context key for the account ID.
	AccountIDKey = "account_id"
	// EmailKey is the context key for email.
	EmailKey = "email"
	// AdminClaimKey is the context key for the admin claim.
	AdminClaimKey = "admin_claim"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	Validate(token string) (*outbound.TokenClaims, error)
}

// Auth returns a middleware that validates bearer tokens and stores the
// account identity in the context. With optional set, requests without a
// valid token pass through anonymously.
func Auth(validator TokenValidator, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			if !optional {
				abortWithError(c, apperrors.Unauthorized("authorization header required"))
				return
			}
			c.Next()
			return
		}

		claims, err := validator.Validate(token)
		if err != nil {
			if !optional {
				abortWithError(c, apperrors.Unauthorized("invalid or expired token"))
				return
			}
			c.Next()
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(EmailKey, claims.Email)
		c.Set(AdminClaimKey, claims.Admin)
		c.Request = c.Request.WithContext(requestctx.WithAccountID(c.Request.Context(), claims.AccountID))
		c.Next()
	}
}

// RequireAuth returns a middleware that requires a valid token.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return Auth(validator, false)
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
}

// GetAccountID returns the authenticated account, or uuid.Nil.
func GetAccountID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(AccountIDKey); exists {
		if id, ok := val.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetEmail returns the email from context.
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}
