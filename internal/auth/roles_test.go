package auth

import (
	"reflect"
	"testing"

	"github.com/sisclinica/identity-service/internal/repository"
)

func role(code string, active bool) repository.Role {
	return repository.Role{ID: "id-" + code, Name: code, Code: code, IsActive: active}
}

func TestResolveRoles(t *testing.T) {
	cases := []struct {
		name        string
		isSuperuser bool
		assigned    []repository.Role
		wantPrimary string
		wantCodes   []string
	}{
		{
			name:        "superuser without roles",
			isSuperuser: true,
			wantPrimary: "RRHH",
			wantCodes:   []string{"RRHH"},
		},
		{
			name:        "single active role",
			assigned:    []repository.Role{role("MEDICO", true)},
			wantPrimary: "MEDICO",
			wantCodes:   []string{"MEDICO"},
		},
		{
			name:        "no roles",
			wantPrimary: "USER",
			wantCodes:   []string{"USER"},
		},
		{
			name:        "first active role wins",
			assigned:    []repository.Role{role("ENFERMERA", true), role("MEDICO", true)},
			wantPrimary: "ENFERMERA",
			wantCodes:   []string{"ENFERMERA", "MEDICO"},
		},
		{
			name:        "inactive roles are skipped",
			assigned:    []repository.Role{role("ENFERMERA", false), role("MEDICO", true)},
			wantPrimary: "MEDICO",
			wantCodes:   []string{"MEDICO"},
		},
		{
			name:        "all roles inactive falls back to USER",
			assigned:    []repository.Role{role("ENFERMERA", false), role("MEDICO", false)},
			wantPrimary: "USER",
			wantCodes:   []string{"USER"},
		},
		{
			name:        "superuser keeps assigned roles and gains RRHH",
			isSuperuser: true,
			assigned:    []repository.Role{role("MEDICO", true)},
			wantPrimary: "RRHH",
			wantCodes:   []string{"MEDICO", "RRHH"},
		},
		{
			name:        "superuser with RRHH assigned does not duplicate it",
			isSuperuser: true,
			assigned:    []repository.Role{role("RRHH", true), role("ADMIN", true)},
			wantPrimary: "RRHH",
			wantCodes:   []string{"RRHH", "ADMIN"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			primary, codes := ResolveRoles(tc.isSuperuser, tc.assigned)
			if primary != tc.wantPrimary {
				t.Errorf("primary = %q, want %q", primary, tc.wantPrimary)
			}
			if !reflect.DeepEqual(codes, tc.wantCodes) {
				t.Errorf("codes = %v, want %v", codes, tc.wantCodes)
			}
			if len(codes) == 0 {
				t.Error("codes is empty; it must never be")
			}
		})
	}
}
