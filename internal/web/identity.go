package web

import (
	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/platform/rbac"
)

// Gin context keys for the authenticated caller.
const (
	ctxUserID = "auth.user_id"
	ctxRoles  = "auth.roles"
)

// SetIdentity stores the authenticated caller on the request context. Called by
// the authentication middleware after token validation.
func SetIdentity(c *gin.Context, userID string, roles []rbac.Role) {
	c.Set(ctxUserID, userID)
	c.Set(ctxRoles, roles)
}

// UserID returns the authenticated caller's id, or "" if the request is anonymous.
func UserID(c *gin.Context) string {
	id, _ := c.Value(ctxUserID).(string)
	return id
}

// Roles returns the authenticated caller's roles.
func Roles(c *gin.Context) []rbac.Role {
	roles, _ := c.Value(ctxRoles).([]rbac.Role)
	return roles
}

// IsAdmin reports whether the caller holds the ADMIN role.
func IsAdmin(c *gin.Context) bool {
	return rbac.HasAny(Roles(c), rbac.RoleAdmin)
}
