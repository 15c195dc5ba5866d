package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sisclinica/identity-service/internal/auth"
	"github.com/sisclinica/identity-service/internal/repository"
	"github.com/sisclinica/identity-service/internal/utils"
)

// UserHandler exposes the RRHH-gated user administration endpoints.
type UserHandler struct {
	Users      *repository.UserRepo
	Roles      *repository.RoleRepo
	BcryptCost int
}

func NewUserHandler(u *repository.UserRepo, r *repository.RoleRepo, bcryptCost int) *UserHandler {
	return &UserHandler{Users: u, Roles: r, BcryptCost: bcryptCost}
}

type registerReq struct {
	NationalID string `json:"national_id_number"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BirthDate  string `json:"birth_date"`
	Address    string `json:"address"`
	Role       string `json:"role"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (req *registerReq) validate() (time.Time, error) {
	if err := utils.ValidateNationalID(req.NationalID); err != nil {
		return time.Time{}, err
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		return time.Time{}, err
	}
	if err := utils.ValidatePhone(req.Phone); err != nil {
		return time.Time{}, err
	}
	if err := utils.ValidateAddress(req.Address); err != nil {
		return time.Time{}, err
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		return time.Time{}, err
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return time.Time{}, err
	}
	birth, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return time.Time{}, err
	}
	if err := utils.ValidateBirthDate(birth); err != nil {
		return time.Time{}, err
	}
	return birth, nil
}

// Register creates a user and assigns the requested role. The route is
// gated on the RRHH primary role.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	birth, err := req.validate()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.GetByCode(ctx, req.Role)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup role failed"})
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	id, err := h.Users.Create(ctx, repository.User{
		NationalID:   req.NationalID,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        req.Email,
		Phone:        req.Phone,
		BirthDate:    birth,
		Address:      req.Address,
		Username:     req.Username,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		if err == repository.ErrUserExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	if err := h.Roles.AssignToUser(ctx, id, role.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign role failed"})
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusCreated, buildUserPayload(u, role.Code, []string{role.Code}))
}

// GetUserRoles lists the roles assigned to a user, resolved the same way
// token claims are.
func (h *UserHandler) GetUserRoles(c echo.Context) error {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	assigned, err := h.Roles.GetUserRoles(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}
	role, codes := auth.ResolveRoles(u.IsSuperuser, assigned)
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": u.ID,
		"role":    role,
		"roles":   codes,
	})
}
