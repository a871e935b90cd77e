package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/internal/rbac"
)

const (
	// ContextActorKey is where the auth middleware stores the resolved actor.
	ContextActorKey = "currentActor"
)

// Actor is the authenticated identity attached to a request. The role has
// already been validated into the closed enum by the auth middleware.
type Actor struct {
	ID   uint
	Role rbac.Role
}

// GetActor retrieves the authenticated actor from the Gin context.
func GetActor(c *gin.Context) (Actor, error) {
	v, exists := c.Get(ContextActorKey)
	if !exists {
		return Actor{}, errors.New("actor not found in context")
	}
	actor, ok := v.(Actor)
	if !ok {
		return Actor{}, errors.New("actor in context has unexpected type")
	}
	return actor, nil
}

// MustActor is for handlers behind the auth middleware where a missing actor
// is a programming error; it aborts with 401 and reports ok=false.
func MustActor(c *gin.Context) (Actor, bool) {
	actor, err := GetActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return Actor{}, false
	}
	return actor, true
}
