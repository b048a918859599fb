package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/driverly/driverly/internal/models"
	"github.com/driverly/driverly/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the user table was populated with.
const bcryptCost = 10

// MinPasswordLen is the minimum accepted password length at signup.
const MinPasswordLen = 8

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ==========================
// Auth Service
// ==========================

// Service orchestrates signup and login against the user store.
// The activity repo is optional; when set, successful signups and logins are
// recorded for the admin activity feed (best effort, never fails the call).
type Service struct {
	users    *repo.UserRepo
	activity *repo.ActivityRepo
}

func NewService(users *repo.UserRepo, activity *repo.ActivityRepo) *Service {
	return &Service{users: users, activity: activity}
}

// SignupInput carries the transient signup fields. The plaintext password is
// discarded after hashing.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// ==========================
// Signup
// ==========================

// Signup validates input, checks uniqueness, hashes the password, and inserts
// the user with the default driver role. The store's unique constraints back
// the pre-check: a concurrent duplicate insert still surfaces as ErrUserExists.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	fields := make(map[string]string)
	if in.Username == "" {
		fields["username"] = "required"
	}
	if in.Email == "" {
		fields["email"] = "required"
	} else if !emailRe.MatchString(in.Email) {
		fields["email"] = "must be a valid email address"
	}
	if in.Password == "" {
		fields["password"] = "required"
	} else if len(in.Password) < MinPasswordLen {
		fields["password"] = fmt.Sprintf("must be at least %d characters", MinPasswordLen)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	exists, err := s.users.UsernameOrEmailExists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, in.Username, in.Email, string(hash), models.RoleDriver, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateUser) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logActivity(ctx, user.Username, models.ActionSignup)
	return user, nil
}

// ==========================
// Login
// ==========================

// Login verifies the credentials and stamps last_login exactly once.
// Unknown username and wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	fields := make(map[string]string)
	if username == "" {
		fields["username"] = "required"
	}
	if password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.Username, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now

	s.logActivity(ctx, user.Username, models.ActionLogin)
	return user, nil
}

func (s *Service) logActivity(ctx context.Context, username, action string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Log(ctx, username, action); err != nil {
		slog.Warn("record activity", "username", username, "action", action, "err", err)
	}
}
