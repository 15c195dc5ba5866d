package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Role mirrors the 'roles' table. Codes are unique and uppercase, e.g.
// "MEDICO" or "ENFERMERA". A user is linked to roles through 'user_roles'.
type Role struct {
	ID          string
	Name        string
	Code        string
	Description sql.NullString
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Seeded role codes. RRHH and USER additionally carry resolver semantics in
// the auth package.
const (
	RoleCodeRRHH      = "RRHH"
	RoleCodeAdmin     = "ADMIN"
	RoleCodeSoporte   = "SOPORTE"
	RoleCodeEnfermera = "ENFERMERA"
	RoleCodeMedico    = "MEDICO"
)

type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

const roleColumns = "r.id,r.name,r.code,r.description,r.is_active,r.created_at,r.updated_at"

// GetUserRoles returns all roles assigned to a user, oldest assignment
// first. Ties on assignment time are broken by code so the order is stable;
// the resolver treats the first active entry as the primary role.
func (r *RoleRepo) GetUserRoles(ctx context.Context, userID string) ([]Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+roleColumns+" FROM roles r JOIN user_roles ur ON ur.role_id=r.id WHERE ur.user_id=? ORDER BY ur.assigned_at, r.code",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Code, &role.Description,
			&role.IsActive, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetByCode fetches a role by its unique uppercase code.
func (r *RoleRepo) GetByCode(ctx context.Context, code string) (Role, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var role Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+roleColumns+" FROM roles r WHERE r.code=? LIMIT 1", code).
		Scan(&role.ID, &role.Name, &role.Code, &role.Description,
			&role.IsActive, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}

// AssignToUser links a role to a user. Re-assigning an existing pair is a
// no-op thanks to the composite primary key.
func (r *RoleRepo) AssignToUser(ctx context.Context, userID, roleID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role_id, assigned_at) VALUES (?,?,?)",
		userID, roleID, time.Now().UTC())
	return err
}

// List returns every role, active or not, ordered by code.
func (r *RoleRepo) List(ctx context.Context) ([]Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+roleColumns+" FROM roles r ORDER BY r.code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Code, &role.Description,
			&role.IsActive, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
