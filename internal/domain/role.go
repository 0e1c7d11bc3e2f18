package domain

// Role is the closed set of account roles. Registration policy switches
// over it exhaustively, so new roles must be added here first.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleSalonOwner Role = "SALON_OWNER"
	RoleStaff      Role = "STAFF"
	RoleAdmin      Role = "ADMIN"
)

// ParseRole maps a raw string to a known role. The second return value is
// false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleSalonOwner, RoleStaff, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}
