package models

import "time"

// Roles a user account can hold. Signup always creates drivers; sponsor and
// admin accounts are provisioned by an operator (seed file or CLI).
const (
	RoleDriver  = "driver"
	RoleSponsor = "sponsor"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleDriver || role == RoleSponsor || role == RoleAdmin
}

// User is one row of the users table. The username is the primary key.
// PasswordHash holds the bcrypt output and is never serialized.
type User struct {
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

// PublicUser is the projection of a user that is safe to return to clients.
type PublicUser struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}
