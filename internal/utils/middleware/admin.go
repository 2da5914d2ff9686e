package middleware

import (
	"strings"

	apperrors "github.com/ariachat/server/internal/utils/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminAuthorizer decides whether an authenticated account is an admin.
// An account is an admin if its token carries the admin claim, or its
// email or id is listed in configuration.
type AdminAuthorizer struct {
	emails     map[string]struct{}
	accountIDs map[uuid.UUID]struct{}
}

// NewAdminAuthorizer creates an AdminAuthorizer. Unparseable ids are ignored.
func NewAdminAuthorizer(emails, accountIDs []string) *AdminAuthorizer {
	a := &AdminAuthorizer{
		emails:     make(map[string]struct{}, len(emails)),
		accountIDs: make(map[uuid.UUID]struct{}, len(accountIDs)),
	}
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			a.emails[e] = struct{}{}
		}
	}
	for _, s := range accountIDs {
		if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
			a.accountIDs[id] = struct{}{}
		}
	}
	return a
}

// IsAdmin reports whether the identity is privileged.
func (a *AdminAuthorizer) IsAdmin(accountID uuid.UUID, email string, claim bool) bool {
	if claim {
		return true
	}
	if a == nil {
		return false
	}
	if _, ok := a.accountIDs[accountID]; ok && accountID != uuid.Nil {
		return true
	}
	if email = normalizeEmail(email); email != "" {
		_, ok := a.emails[email]
		return ok
	}
	return false
}

// RequireAdmin aborts unless the authenticated account is an admin.
func RequireAdmin(authorizer *AdminAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := GetAccountID(c)
		if accountID == uuid.Nil {
			abortWithError(c, apperrors.Unauthorized(""))
			return
		}
		if !authorizer.IsAdmin(accountID, GetEmail(c), c.GetBool(AdminClaimKey)) {
			abortWithError(c, apperrors.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
