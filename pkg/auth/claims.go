package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims accepted by the credit scoring API. The
// caller identity is the registered subject.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Role constants
const (
	RoleAdmin       = "admin"
	RoleLoanOfficer = "loan_officer"
	RoleAnalyst     = "analyst"
	RoleService     = "service"
)

// KnownRoles lists every role the scoring API grants permissions to.
func KnownRoles() []string {
	return []string{RoleAdmin, RoleLoanOfficer, RoleAnalyst, RoleService}
}

// IsKnownRole reports whether role is one of KnownRoles.
func IsKnownRole(role string) bool {
	return slices.Contains(KnownRoles(), role)
}
