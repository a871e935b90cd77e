package rbac

import "fmt"

// Role is the closed set of actor roles. It is parsed once at the auth
// boundary and passed as a typed value through every check; nothing
// downstream should ever look at the raw string again.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RolePlayer  Role = "player"
	RoleParent  Role = "parent"
)

// DefaultRole is assigned when registration does not specify one.
const DefaultRole = RoleTrainer

// ParseRole validates a raw role string coming from the database or a request
// body and returns the typed Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleTrainer, RolePlayer, RoleParent:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsStaff reports whether the role carries operational control over the team
// (event management, attendance finalization).
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTrainer
}

func (r Role) String() string {
	return string(r)
}
