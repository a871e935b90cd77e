package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/internal/common"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/pkg/token"
	"gorm.io/gorm"
)

type userRow struct {
	ID     uint
	Role   string
	Active bool
}

// AuthMiddleware validates the bearer token, confirms the user still exists
// and is active, and stores a typed actor in the context. The role string is
// parsed into the closed enum here, once, so downstream checks never see raw
// strings.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		var row userRow
		err = db.Table("users").
			Select("id, role, active").
			Where("id = ? AND deleted_at IS NULL", claims.UserID).
			Scan(&row).Error
		if err != nil || row.ID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		if !row.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User is inactive"})
			return
		}

		role, err := rbac.ParseRole(row.Role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User has an invalid role"})
			return
		}

		c.Set(common.ContextActorKey, common.Actor{ID: row.ID, Role: role})
		c.Next()
	}
}
