package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sisclinica/identity-service/internal/auth"
	"github.com/sisclinica/identity-service/internal/repository"
)

type staticUserStore struct{}

func (staticUserStore) GetByEmail(context.Context, string) (repository.User, error) {
	return repository.User{}, sql.ErrNoRows
}
func (staticUserStore) GetByUsername(context.Context, string) (repository.User, error) {
	return repository.User{}, sql.ErrNoRows
}
func (staticUserStore) GetByID(context.Context, string) (repository.User, error) {
	return repository.User{}, sql.ErrNoRows
}
func (staticUserStore) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

type staticRoleStore struct{}

func (staticRoleStore) GetUserRoles(context.Context, string) ([]repository.Role, error) {
	return nil, nil
}

func newGateService() *auth.Service {
	codec := auth.NewTokenCodec("gate-secret", 30, 7)
	return auth.NewService(staticUserStore{}, staticRoleStore{}, codec, auth.NewMemoryBlacklist())
}

func issueAccess(t *testing.T, svc *auth.Service, isSuperuser bool, role string, roles []string) string {
	t.Helper()
	token, _, err := svc.Codec().IssueAccess("user-1", "jdoe", "jdoe@example.com", isSuperuser, role, roles)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	return token
}

// runGate sends a request with the given Authorization header through the
// middleware chain and a trivial OK handler.
func runGate(t *testing.T, svc *auth.Service, header string, extra ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(extra) - 1; i >= 0; i-- {
		h = extra[i](h)
	}
	h = Authenticate(svc)(h)
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestAuthenticate(t *testing.T) {
	svc := newGateService()
	token := issueAccess(t, svc, false, "MEDICO", []string{"MEDICO"})

	if rec := runGate(t, svc, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header: status = %d, want 401", rec.Code)
	}
	if rec := runGate(t, svc, "Bearer garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", rec.Code)
	}
	if rec := runGate(t, svc, "Bearer "+token); rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", rec.Code)
	}

	// Revocation wins over validity and keeps winning after expiry checks.
	svc.Blacklist().Add(token)
	if rec := runGate(t, svc, "Bearer "+token); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateRejectsRefreshTokens(t *testing.T) {
	svc := newGateService()
	refresh, _, err := svc.Codec().IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if rec := runGate(t, svc, "Bearer "+refresh); rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh token passed the access gate: status = %d", rec.Code)
	}
}

func TestRequireSuperuser(t *testing.T) {
	svc := newGateService()

	plain := issueAccess(t, svc, false, "MEDICO", []string{"MEDICO"})
	if rec := runGate(t, svc, "Bearer "+plain, RequireSuperuser()); rec.Code != http.StatusForbidden {
		t.Errorf("non-superuser: status = %d, want 403", rec.Code)
	}

	super := issueAccess(t, svc, true, "RRHH", []string{"RRHH"})
	if rec := runGate(t, svc, "Bearer "+super, RequireSuperuser()); rec.Code != http.StatusOK {
		t.Errorf("superuser: status = %d, want 200", rec.Code)
	}
}

func TestRequireRRHHIsStrictOnPrimaryRole(t *testing.T) {
	svc := newGateService()

	primary := issueAccess(t, svc, false, "RRHH", []string{"RRHH"})
	if rec := runGate(t, svc, "Bearer "+primary, RequireRRHH()); rec.Code != http.StatusOK {
		t.Errorf("RRHH primary: status = %d, want 200", rec.Code)
	}

	// RRHH in the secondary role set does not satisfy the gate; only the
	// primary-role claim counts.
	secondary := issueAccess(t, svc, false, "MEDICO", []string{"MEDICO", "RRHH"})
	if rec := runGate(t, svc, "Bearer "+secondary, RequireRRHH()); rec.Code != http.StatusForbidden {
		t.Errorf("RRHH secondary: status = %d, want 403", rec.Code)
	}
}
