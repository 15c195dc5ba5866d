package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sisclinica/identity-service/internal/repository"
	"github.com/sisclinica/identity-service/internal/utils"
)

// UserStore is the slice of the user repository the auth flows need. The
// concrete implementation is repository.UserRepo; tests inject fakes.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByUsername(ctx context.Context, username string) (repository.User, error)
	GetByID(ctx context.Context, id string) (repository.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// RoleStore resolves a user's assigned roles in assignment order.
type RoleStore interface {
	GetUserRoles(ctx context.Context, userID string) ([]repository.Role, error)
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
	User         repository.User
	Role         string
	Roles        []string
}

// ValidationResult is the outcome of the never-fails validate operation.
type ValidationResult struct {
	Valid       bool   `json:"valid"`
	UserID      string `json:"user_id,omitempty"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	Message     string `json:"message"`
}

// Service implements the credential, refresh, logout and validate flows on
// top of the codec and the deny-list. Persistence calls are fail-fast: any
// store error aborts the operation and propagates as-is.
//
// Refresh tokens are not rotated or tracked: a refresh token stays usable
// until its natural expiry. Revocation applies to whichever token string is
// handed to Logout.
type Service struct {
	users     UserStore
	roles     RoleStore
	codec     *TokenCodec
	blacklist Blacklist
}

func NewService(users UserStore, roles RoleStore, codec *TokenCodec, blacklist Blacklist) *Service {
	return &Service{users: users, roles: roles, codec: codec, blacklist: blacklist}
}

// Blacklist exposes the deny-list, mainly so tests and admin tooling can
// inspect it.
func (s *Service) Blacklist() Blacklist { return s.blacklist }

// Codec exposes the token codec for the validate handler and middleware.
func (s *Service) Codec() *TokenCodec { return s.codec }

// Login authenticates an identifier (tried as email first, then username)
// and password, records the login timestamp and issues a token pair. A bad
// identifier and a bad password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		u, err = s.users.GetByUsername(ctx, identifier)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	// The last-login write happens before issuance and is not best-effort:
	// no tokens are handed out for an update that did not persist.
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = sql.NullTime{Time: now, Valid: true}
	u.UpdatedAt = now

	return s.issuePair(ctx, u)
}

// Refresh exchanges a valid refresh token for a new pair. Roles are
// re-resolved from the user's current assignments, not from the claims of
// any earlier access token. A missing or inactive user yields the same
// ErrTokenInvalidOrExpired as a bad token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims := s.codec.Verify(refreshToken, TokenKindRefresh)
	if claims == nil {
		return nil, ErrTokenInvalidOrExpired
	}
	u, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenInvalidOrExpired
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrTokenInvalidOrExpired
	}
	return s.issuePair(ctx, u)
}

func (s *Service) issuePair(ctx context.Context, u repository.User) (*TokenPair, error) {
	assigned, err := s.roles.GetUserRoles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	primary, codes := ResolveRoles(u.IsSuperuser, assigned)

	access, _, err := s.codec.IssueAccess(u.ID, u.Username, u.Email, u.IsSuperuser, primary, codes)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.codec.IssueRefresh(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.codec.AccessTTL() / time.Second),
		User:         u,
		Role:         primary,
		Roles:        codes,
	}, nil
}

// Authorize is the per-request gate: the deny-list is consulted first, then
// the token must verify as an access token. The returned claims are what
// handlers see as the authenticated caller.
func (s *Service) Authorize(token string) (*Claims, error) {
	if s.blacklist.Contains(token) {
		return nil, ErrTokenRevoked
	}
	claims := s.codec.Verify(token, TokenKindAccess)
	if claims == nil {
		return nil, ErrTokenInvalidOrExpired
	}
	return claims, nil
}

// Logout revokes the presented token. The caller is expected to have passed
// Authorize already; adding the token to the deny-list is a single atomic
// store operation.
func (s *Service) Logout(token string) {
	s.blacklist.Add(token)
}

// Validate inspects a token and reports a structured result. It never
// returns an error: every failure mode resolves to Valid=false with a
// message.
func (s *Service) Validate(token string) ValidationResult {
	claims := s.codec.Decode(token)
	if claims == nil {
		return ValidationResult{Valid: false, Message: "Invalid or expired token"}
	}
	if claims.Subject == "" {
		return ValidationResult{Valid: false, Message: "Invalid token payload"}
	}
	return ValidationResult{
		Valid:       true,
		UserID:      claims.Subject,
		Username:    claims.Username,
		Email:       claims.Email,
		IsSuperuser: claims.IsSuperuser,
		Message:     "Token is valid",
	}
}
