package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sisclinica/identity-service/internal/auth"
	"github.com/sisclinica/identity-service/internal/middleware"
	"github.com/sisclinica/identity-service/internal/queue"
	"github.com/sisclinica/identity-service/internal/repository"
	queue_publisher "github.com/sisclinica/identity-service/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Auth  *auth.Service
	Users *repository.UserRepo
	Roles *repository.RoleRepo
}

func NewAuthHandler(a *auth.Service, u *repository.UserRepo, r *repository.RoleRepo) *AuthHandler {
	return &AuthHandler{Auth: a, Users: u, Roles: r}
}

// ----- DTOs -----

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type validateReq struct {
	Token string `json:"token"`
}

type userPayload struct {
	ID          string     `json:"id"`
	NationalID  string     `json:"national_id_number"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	BirthDate   string     `json:"birth_date"`
	Address     string     `json:"address"`
	Role        string     `json:"role"`
	Roles       []string   `json:"roles"`
	Username    string     `json:"username"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLogin   *time.Time `json:"last_login"`
}

type tokenResp struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	User         userPayload `json:"user"`
}

func buildUserPayload(u repository.User, role string, roles []string) userPayload {
	p := userPayload{
		ID:          u.ID,
		NationalID:  u.NationalID,
		FullName:    u.FullName,
		Email:       u.Email,
		Phone:       u.Phone,
		BirthDate:   u.BirthDate.Format("2006-01-02"),
		Address:     u.Address,
		Role:        role,
		Roles:       roles,
		Username:    u.Username,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.LastLogin.Valid {
		t := u.LastLogin.Time
		p.LastLogin = &t
	}
	return p
}

func tokenResponse(pair *auth.TokenPair) tokenResp {
	return tokenResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User:         buildUserPayload(pair.User, pair.Role, pair.Roles),
	}
}

// Login authenticates an identifier/password pair and returns new tokens.
// Bad credentials and inactive accounts both map to 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "identifier/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Auth.Login(ctx, req.Identifier, req.Password)
	switch err {
	case nil:
	case auth.ErrInvalidCredentials:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case auth.ErrAccountInactive:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is inactive"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	// Best effort; a broker outage must not fail the login.
	_ = queue_publisher.PublishAuthEvent(ctx, queue.AuthEvent{
		Event:      queue.EventLoggedIn,
		UserID:     pair.User.ID,
		Username:   pair.User.Username,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, tokenResponse(pair))
}

// Refresh exchanges a refresh token for a new pair. Any failure, including
// an inactive or deleted user, maps to 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	switch err {
	case nil:
	case auth.ErrTokenInvalidOrExpired:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired refresh token"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	_ = queue_publisher.PublishAuthEvent(ctx, queue.AuthEvent{
		Event:      queue.EventRefreshed,
		UserID:     pair.User.ID,
		Username:   pair.User.Username,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, tokenResponse(pair))
}

// Logout revokes the access token that authenticated this request. The
// Authenticate middleware has already rejected invalid or revoked tokens,
// so all that remains is the deny-list insert.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	token, _ := c.Get(middleware.TokenKey).(string)
	if claims == nil || token == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	h.Auth.Logout(token)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishAuthEvent(ctx, queue.AuthEvent{
		Event:      queue.EventLoggedOut,
		UserID:     claims.Subject,
		Username:   claims.Username,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Successfully logged out",
		"user_id": claims.Subject,
		"detail":  "Token has been invalidated. Please discard your tokens.",
	})
}

// Validate inspects a token and always answers 200 with a structured
// result; decode failures surface as valid=false, never as an error status.
func (h *AuthHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return c.JSON(http.StatusOK, h.Auth.Validate(req.Token))
}

// Me returns the authenticated caller's current user record, with roles
// re-read from the database rather than echoed from the token.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	assigned, err := h.Roles.GetUserRoles(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}
	role, codes := auth.ResolveRoles(u.IsSuperuser, assigned)
	return c.JSON(http.StatusOK, buildUserPayload(u, role, codes))
}
