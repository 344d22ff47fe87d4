package auth

import "strings"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// ParseRole normalizes a role claim. Unknown values are reported as not ok.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEmployee:
		return RoleEmployee, true
	}
	return "", false
}

// Identity is the caller as established by the auth layer. It is trusted as-is.
type Identity struct {
	UserID     string `json:"userId"`
	EmployeeID string `json:"employeeId"`
	Role       Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Owns reports whether employeeID belongs to the caller.
func (i Identity) Owns(employeeID string) bool {
	return i.EmployeeID != "" && i.EmployeeID == employeeID
}
