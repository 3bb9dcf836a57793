// Package types provides the records, enums and request types shared by the
// career portal packages.
package types

import "fmt"

// Role is the portal a user belongs to. It is issued by the auth provider.
type Role string

// Roles
const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a raw claim into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStudent, RoleEmployer, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Identity is the authenticated caller of an action.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// Is reports whether the identity holds one of the given roles.
func (i Identity) Is(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}
