package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sisclinica/identity-service/internal/repository"
	"github.com/sisclinica/identity-service/internal/utils"
)

type fakeUserStore struct {
	users        map[string]repository.User // keyed by id
	lastLoginErr error
	lastLogins   map[string]time.Time
}

func newFakeUserStore(users ...repository.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]repository.User), lastLogins: make(map[string]time.Time)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (repository.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return repository.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (repository.User, error) {
	u, ok := s.users[id]
	if !ok {
		return repository.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if s.lastLoginErr != nil {
		return s.lastLoginErr
	}
	s.lastLogins[id] = at
	return nil
}

type fakeRoleStore struct {
	rolesByUser map[string][]repository.Role
}

func (s *fakeRoleStore) GetUserRoles(_ context.Context, userID string) ([]repository.Role, error) {
	return s.rolesByUser[userID], nil
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	hash, err := utils.HashPassword(plain, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func newTestService(t *testing.T, users *fakeUserStore, roles *fakeRoleStore) *Service {
	t.Helper()
	if roles == nil {
		roles = &fakeRoleStore{}
	}
	return NewService(users, roles, newTestCodec(), NewMemoryBlacklist())
}

func testUser(t *testing.T) repository.User {
	return repository.User{
		ID:           "7c3de1f0-0000-4000-8000-000000000001",
		Email:        "jdoe@example.com",
		Username:     "jdoe",
		PasswordHash: mustHash(t, "Correct1!"),
		IsActive:     true,
	}
}

func TestLoginIssuesPairWithResolvedRole(t *testing.T) {
	u := testUser(t)
	users := newFakeUserStore(u)
	roles := &fakeRoleStore{rolesByUser: map[string][]repository.Role{
		u.ID: {role("MEDICO", true)},
	}}
	svc := newTestService(t, users, roles)

	pair, err := svc.Login(context.Background(), "jdoe", "Correct1!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Errorf("token_type = %q", pair.TokenType)
	}
	if pair.ExpiresIn != 30*60 {
		t.Errorf("expires_in = %d, want %d", pair.ExpiresIn, 30*60)
	}

	claims := svc.Codec().Verify(pair.AccessToken, TokenKindAccess)
	if claims == nil {
		t.Fatal("issued access token does not verify")
	}
	if claims.Role != "MEDICO" {
		t.Errorf("claims role = %q, want MEDICO", claims.Role)
	}
	if claims.Subject != u.ID {
		t.Errorf("claims subject = %q, want %q", claims.Subject, u.ID)
	}
	if svc.Codec().Verify(pair.RefreshToken, TokenKindRefresh) == nil {
		t.Error("issued refresh token does not verify")
	}
	if _, ok := users.lastLogins[u.ID]; !ok {
		t.Error("last login was not recorded")
	}
}

func TestLoginByEmailIdentifier(t *testing.T) {
	u := testUser(t)
	svc := newTestService(t, newFakeUserStore(u), nil)

	if _, err := svc.Login(context.Background(), "jdoe@example.com", "Correct1!"); err != nil {
		t.Fatalf("Login by email: %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	u := testUser(t)
	svc := newTestService(t, newFakeUserStore(u), nil)

	// Unknown identifier and wrong password must be indistinguishable.
	if _, err := svc.Login(context.Background(), "nobody", "Correct1!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown identifier: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "jdoe", "Wrong1!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	u := testUser(t)
	u.IsActive = false
	svc := newTestService(t, newFakeUserStore(u), nil)

	if _, err := svc.Login(context.Background(), "jdoe", "Correct1!"); !errors.Is(err, ErrAccountInactive) {
		t.Errorf("err = %v, want ErrAccountInactive", err)
	}
}

func TestLoginAbortsWhenLastLoginWriteFails(t *testing.T) {
	u := testUser(t)
	users := newFakeUserStore(u)
	users.lastLoginErr = errors.New("write failed")
	svc := newTestService(t, users, nil)

	pair, err := svc.Login(context.Background(), "jdoe", "Correct1!")
	if err == nil {
		t.Fatal("Login succeeded despite failed last-login write")
	}
	if pair != nil {
		t.Fatal("tokens were issued for an update that did not persist")
	}
}

func TestRefreshReResolvesCurrentRoles(t *testing.T) {
	u := testUser(t)
	users := newFakeUserStore(u)
	roles := &fakeRoleStore{rolesByUser: map[string][]repository.Role{
		u.ID: {role("MEDICO", true)},
	}}
	svc := newTestService(t, users, roles)

	pair, err := svc.Login(context.Background(), "jdoe", "Correct1!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Role assignments change between login and refresh; the new access
	// token must reflect the current state, not the old claims.
	roles.rolesByUser[u.ID] = []repository.Role{role("ENFERMERA", true)}

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	claims := svc.Codec().Verify(next.AccessToken, TokenKindAccess)
	if claims == nil {
		t.Fatal("refreshed access token does not verify")
	}
	if claims.Role != "ENFERMERA" {
		t.Errorf("claims role = %q, want ENFERMERA", claims.Role)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	u := testUser(t)
	svc := newTestService(t, newFakeUserStore(u), nil)

	pair, err := svc.Login(context.Background(), "jdoe", "Correct1!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, ErrTokenInvalidOrExpired) {
		t.Errorf("err = %v, want ErrTokenInvalidOrExpired", err)
	}
}

func TestRefreshRejectsDeletedOrInactiveUser(t *testing.T) {
	u := testUser(t)
	users := newFakeUserStore(u)
	svc := newTestService(t, users, nil)

	pair, err := svc.Login(context.Background(), "jdoe", "Correct1!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	inactive := u
	inactive.IsActive = false
	users.users[u.ID] = inactive
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenInvalidOrExpired) {
		t.Errorf("inactive user: err = %v, want ErrTokenInvalidOrExpired", err)
	}

	delete(users.users, u.ID)
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenInvalidOrExpired) {
		t.Errorf("deleted user: err = %v, want ErrTokenInvalidOrExpired", err)
	}
}

func TestLogoutRevokesOnlyThePresentedToken(t *testing.T) {
	u := testUser(t)
	users := newFakeUserStore(u)
	roles := &fakeRoleStore{rolesByUser: map[string][]repository.Role{
		u.ID: {role("MEDICO", true)},
	}}
	svc := newTestService(t, users, roles)

	first, err := svc.Login(context.Background(), "jdoe", "Correct1!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	second, err := svc.Login(context.Background(), "jdoe", "Correct1!")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}

	if _, err := svc.Authorize(first.AccessToken); err != nil {
		t.Fatalf("Authorize before logout: %v", err)
	}

	svc.Logout(first.AccessToken)

	if _, err := svc.Authorize(first.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("revoked token: err = %v, want ErrTokenRevoked", err)
	}
	// A different, still-valid token for the same user remains accepted.
	if _, err := svc.Authorize(second.AccessToken); err != nil {
		t.Errorf("second token rejected after unrelated logout: %v", err)
	}
}

func TestAuthorizeChecksDenyListBeforeCodec(t *testing.T) {
	svc := newTestService(t, newFakeUserStore(), nil)

	// Even cryptographic garbage reports Revoked once deny-listed: the
	// deny-list check runs first.
	svc.Blacklist().Add("garbage")
	if _, err := svc.Authorize("garbage"); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("err = %v, want ErrTokenRevoked", err)
	}
	if _, err := svc.Authorize("other-garbage"); !errors.Is(err, ErrTokenInvalidOrExpired) {
		t.Errorf("err = %v, want ErrTokenInvalidOrExpired", err)
	}
}

func TestAuthorizeRejectsRefreshToken(t *testing.T) {
	u := testUser(t)
	svc := newTestService(t, newFakeUserStore(u), nil)

	pair, err := svc.Login(context.Background(), "jdoe", "Correct1!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Authorize(pair.RefreshToken); !errors.Is(err, ErrTokenInvalidOrExpired) {
		t.Errorf("refresh token authorized as access: err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	u := testUser(t)
	u.IsSuperuser = true
	svc := newTestService(t, newFakeUserStore(u), nil)

	pair, err := svc.Login(context.Background(), "jdoe", "Correct1!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	res := svc.Validate(pair.AccessToken)
	if !res.Valid {
		t.Fatalf("valid token reported invalid: %+v", res)
	}
	if res.UserID != u.ID || res.Username != "jdoe" || res.Email != "jdoe@example.com" {
		t.Errorf("result identity = %+v", res)
	}
	if !res.IsSuperuser {
		t.Error("is_superuser lost in validation result")
	}

	res = svc.Validate("garbage")
	if res.Valid {
		t.Error("garbage token reported valid")
	}
	if res.Message == "" {
		t.Error("invalid result carries no message")
	}
	if res.UserID != "" {
		t.Error("invalid result leaks a user id")
	}
}
