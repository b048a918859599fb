package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/driverly/driverly/internal/models"
	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateUser is returned when an insert violates the username or email
// unique constraint. The constraint is the final arbiter under concurrent
// signups; callers must handle this even after a pre-check.
var ErrDuplicateUser = errors.New("username or email already exists")

const mysqlErrDuplicateEntry = 1062

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash, role string, createdAt time.Time) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, role, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, NULL)
	`

	_, err := r.DB.ExecContext(ctx, query, username, email, passwordHash, role, createdAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	return &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    createdAt,
	}, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT username, email, password_hash, role, created_at, last_login
		FROM users
		WHERE username = ?
	`

	user := &models.User{}
	var lastLogin sql.NullTime

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return user, nil
}

// ==========================
// Username Or Email Exists
// ==========================
func (r *UserRepo) UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ==========================
// Touch Last Login
// ==========================
func (r *UserRepo) TouchLastLogin(ctx context.Context, username string, when time.Time) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE username = ?`, when, username)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ==========================
// List Users
// ==========================
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := `
		SELECT username, email, role, created_at, last_login
		FROM users
		ORDER BY created_at DESC, username
		LIMIT ? OFFSET ?
	`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.Username, &u.Email, &u.Role, &u.CreatedAt, &lastLogin); err != nil {
			return nil, err
		}
		if lastLogin.Valid {
			u.LastLogin = &lastLogin.Time
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ==========================
// Count Users
// ==========================
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// ==========================
// Count By Role
// ==========================
func (r *UserRepo) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
