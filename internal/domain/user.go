package domain

import "time"

// Role enumerates helpdesk teams a user can belong to.
type Role string

const (
	RoleCS  Role = "CS"
	RoleTSO Role = "TSO"
	RoleNOC Role = "NOC"
)

// Roles lists every known role in display order.
func Roles() []Role {
	return []Role{RoleCS, RoleTSO, RoleNOC}
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleCS, RoleTSO, RoleNOC:
		return Role(raw), true
	}
	return "", false
}

// User is a helpdesk operator. Users are never hard-deleted; deactivation
// flips IsActive instead.
type User struct {
	ID        int64
	Username  string
	Email     string
	FullName  string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
