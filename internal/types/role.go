package types

// Role is the closed set of actor roles. Dispatch on it with exhaustive
// switches; adding a role means visiting every switch the compiler flags.
type Role string

const (
	RoleParent     Role = "parent"
	RoleSpecialist Role = "specialist"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleSpecialist, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role resolves against the admin store.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

func (r Role) String() string { return string(r) }
