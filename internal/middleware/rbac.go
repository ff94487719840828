package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// SelfAccess admits a caller whose user ID equals the route's :id parameter,
// e.g. a professor reading their own timetable.
const SelfAccess = "SELF"

// RBAC admits callers holding one of the allowed roles. Superadmins always pass.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	roles := make(map[models.UserRole]struct{}, len(allowed))
	for _, a := range allowed {
		if a == SelfAccess {
			allowSelf = true
			continue
		}
		roles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := c.Get(ContextUserKey)
		user, typed := claims.(*models.JWTClaims)
		if !ok || !typed || user == nil {
			abortWith(c, appErrors.ErrUnauthorized)
			return
		}

		if _, granted := roles[user.Role]; granted || user.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}
		if allowSelf && user.UserID != "" && c.Param("id") == user.UserID {
			c.Next()
			return
		}

		abortWith(c, appErrors.ErrForbidden)
	}
}

// RequireRoles is RBAC without self access.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
