package entity

import "strings"

// RoleName identifies a permission tier. The set is closed.
type RoleName string

const (
	RoleAdmin RoleName = "ADMIN"
	RoleUser  RoleName = "USER"
)

// Roles lists every known role.
var Roles = []RoleName{RoleAdmin, RoleUser}

// IsValid reports whether r is one of the predefined roles.
func (r RoleName) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

func (r RoleName) String() string {
	return string(r)
}

// ParseRole normalizes a role name. It accepts any letter case and the legacy
// "_ROLE" suffix ("admin_role" → ADMIN). ok is false for unknown roles.
func ParseRole(s string) (RoleName, bool) {
	n := strings.ToUpper(strings.TrimSpace(s))
	n = strings.TrimSuffix(n, "_ROLE")
	r := RoleName(n)
	return r, r.IsValid()
}
