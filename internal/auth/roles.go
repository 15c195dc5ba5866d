package auth

import (
	"github.com/sisclinica/identity-service/internal/repository"
)

// Role codes with special meaning to the resolver. RoleRRHH is the elevated
// role every superuser resolves to; RoleUser is the fallback when a user has
// no active roles at all.
const (
	RoleRRHH = "RRHH"
	RoleUser = "USER"
)

// ResolveRoles turns a user's superuser flag and assigned roles into the
// primary role and the role-code set embedded in an access token.
//
// The primary role is RRHH for superusers, otherwise the first active role
// in the order the store returned them, otherwise USER. The code set holds
// every active role code, gains RRHH for superusers when missing, and falls
// back to USER when empty, so it is never empty.
func ResolveRoles(isSuperuser bool, assigned []repository.Role) (string, []string) {
	active := make([]repository.Role, 0, len(assigned))
	for _, r := range assigned {
		if r.IsActive {
			active = append(active, r)
		}
	}

	primary := RoleUser
	switch {
	case isSuperuser:
		primary = RoleRRHH
	case len(active) > 0:
		primary = active[0].Code
	}

	codes := make([]string, 0, len(active)+1)
	for _, r := range active {
		codes = append(codes, r.Code)
	}
	if isSuperuser && !containsCode(codes, RoleRRHH) {
		codes = append(codes, RoleRRHH)
	}
	if len(codes) == 0 {
		codes = append(codes, RoleUser)
	}
	return primary, codes
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
