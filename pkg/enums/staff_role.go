package enums

import "fmt"

// StaffRole maps to the staff_role_enum enum in Postgres.
type StaffRole string

const (
	StaffRoleTeller     StaffRole = "teller"
	StaffRoleBookkeeper StaffRole = "bookkeeper"
	StaffRoleManager    StaffRole = "manager"
	StaffRoleAdmin      StaffRole = "admin"
)

var validStaffRoles = []StaffRole{
	StaffRoleTeller,
	StaffRoleBookkeeper,
	StaffRoleManager,
	StaffRoleAdmin,
}

// IsValid reports whether the value matches the canonical staff role enum.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
