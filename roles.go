package authclient

// Role is the coarse-grained capability tier of an account. There is no
// hierarchy between roles: every protected surface lists its own allow-set
// and checks are evaluated by membership only.
type Role string

const (
	// RoleAdmin manages accounts and all content.
	RoleAdmin Role = "admin"
	// RoleStaff manages content.
	RoleStaff Role = "staff"
	// RoleLecturer authors content.
	RoleLecturer Role = "lecturer"
)

// IsValid checks if the role is one of the predefined valid roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleLecturer:
		return true
	default:
		return false
	}
}

// AllRoles returns every predefined role.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleStaff, RoleLecturer}
}

// ParseRole safely parses a string into a Role.
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}

// RoleSet is an explicit allow-set. An empty set means "any authenticated
// role".
type RoleSet []Role

// Contains reports set membership. No hierarchy is consulted.
func (s RoleSet) Contains(r Role) bool {
	for _, member := range s {
		if member == r {
			return true
		}
	}
	return false
}

// Empty reports whether the set imposes no role restriction.
func (s RoleSet) Empty() bool {
	return len(s) == 0
}
