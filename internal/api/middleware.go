package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/facility-booking-backend/internal/auth"
	"github.com/campuslink/facility-booking-backend/internal/user"
)

// RequireAdmin ensures the authenticated principal holds the admin role.
// It MUST be used after auth.AuthRequired middleware; the role comes from
// the validated JWT claims.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.GetUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if user.Role(auth.GetUserRole(c)) != user.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}

		c.Next()
	}
}
