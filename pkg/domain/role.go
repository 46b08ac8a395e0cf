package domain

import dErrors "github.com/geekskaran/cattel/pkg/domain-errors"

// Role is the closed set of account roles. The authorization policy
// matches exhaustively on this type so an unknown role can never fall
// through to an implicit allow.
type Role string

const (
	RoleFarmer        Role = "farmer"
	RoleRegionalAdmin Role = "regional_admin"
	RoleSuperAdmin    Role = "super_admin"
)

// validRoles is the single source of truth for supported roles.
var validRoles = map[Role]bool{
	RoleFarmer:        true,
	RoleRegionalAdmin: true,
	RoleSuperAdmin:    true,
}

// ParseRole constructs a Role from external input (signup requests,
// token claims). Errors with CodeInvalidInput on unknown values.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return r, nil
}

// IsValid reports whether the role is one of the supported values.
func (r Role) IsValid() bool { return validRoles[r] }

func (r Role) String() string { return string(r) }
