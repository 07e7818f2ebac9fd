package middleware

import (
	"net/http"
	"slices"

	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RoleViewer may only read
const RoleViewer = "viewer"

// ReadOnlyFor rejects mutating requests from the given roles. Requests
// without claims pass, so the check is a no-op when auth is disabled.
func ReadOnlyFor(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		claims := GetJWTClaims(c)
		if claims != nil && slices.Contains(roles, claims.Role) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Role "+claims.Role+" is read-only")
			return
		}
		c.Next()
	}
}
