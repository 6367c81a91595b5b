package models

// Role is a closed, ordered set of trust levels. A higher role carries every capability of
// the roles below it.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

func (r Role) rank() int {
	switch r {
	case RoleMember:
		return 1
	case RoleAdmin:
		return 2
	default:
		return 0
	}
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r.rank() > 0
}

// Allows reports whether r meets the required role. Unknown roles allow nothing.
func (r Role) Allows(required Role) bool {
	return r.Valid() && required.Valid() && r.rank() >= required.rank()
}

// IsAdmin is shorthand for Allows(RoleAdmin)
func (r Role) IsAdmin() bool {
	return r.Allows(RoleAdmin)
}
