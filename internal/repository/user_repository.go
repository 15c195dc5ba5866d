package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User mirrors the 'users' table. The password hash is bcrypt; LastLogin is
// NULL until the first successful login.
type User struct {
	ID           string
	NationalID   string
	FullName     string
	Email        string
	Phone        string
	BirthDate    time.Time
	Address      string
	Username     string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    sql.NullTime
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,national_id_number,full_name,email,phone,birth_date,address,username,password_hash,is_active,is_superuser,created_at,updated_at,last_login"

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.NationalID, &u.FullName, &u.Email, &u.Phone,
		&u.BirthDate, &u.Address, &u.Username, &u.PasswordHash,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	return u, err
}

// Create inserts a user with a fresh UUID and returns its ID. The password
// must already be hashed by the caller.
func (r *UserRepo) Create(ctx context.Context, u User) (string, error) {
	id := uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, national_id_number, full_name, email, phone, birth_date, address, username, password_hash, is_active, is_superuser) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		id, u.NationalID, u.FullName, u.Email, u.Phone, u.BirthDate, u.Address,
		u.Username, u.PasswordHash, u.IsActive, u.IsSuperuser)
	if err != nil {
		// 1062 = MySQL duplicate key (email, username or national id).
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrUserExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateLastLogin records a successful authentication. sql.ErrNoRows is
// returned when the user no longer exists so the caller can abort the login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=?, updated_at=? WHERE id=?", at, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
