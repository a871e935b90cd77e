package rmiddleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/internal/common"
	"github.com/team-rf/roster/internal/rbac"
)

// RequireRoles aborts with 403 unless the authenticated actor holds one of
// the given roles. Must run after the auth middleware.
func RequireRoles(requiredRoles ...rbac.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := common.GetActor(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: " + err.Error()})
			return
		}

		for _, required := range requiredRoles {
			if actor.Role == required {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":    "Forbidden",
			"message":  "You don't have permission to access this resource",
			"required": requiredRoles,
		})
	}
}

// AdminRequired is a convenience middleware for admin-only access.
func AdminRequired() gin.HandlerFunc {
	return RequireRoles(rbac.RoleAdmin)
}

// StaffRequired allows admin or trainer.
func StaffRequired() gin.HandlerFunc {
	return RequireRoles(rbac.RoleAdmin, rbac.RoleTrainer)
}
