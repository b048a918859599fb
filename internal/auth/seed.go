package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/driverly/driverly/internal/models"
	"github.com/driverly/driverly/internal/repo"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
}

// SeedFromFile provisions accounts from a YAML file. Existing usernames are
// skipped, so the file can be applied repeatedly. This is how admin and
// sponsor accounts get created; signup only ever creates drivers.
func SeedFromFile(ctx context.Context, users *repo.UserRepo, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, u := range sf.Users {
		if u.Username == "" || u.Email == "" || u.Password == "" {
			slog.Warn("seed: skipping incomplete entry", "username", u.Username)
			continue
		}
		role := u.Role
		if role == "" {
			role = models.RoleDriver
		}
		if !models.ValidRole(role) {
			return fmt.Errorf("seed: unknown role %q for user %q", u.Role, u.Username)
		}

		if _, err := users.GetByUsername(ctx, u.Username); err == nil {
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("seed: lookup %q: %w", u.Username, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("seed: hash password for %q: %w", u.Username, err)
		}
		if _, err := users.Create(ctx, u.Username, u.Email, string(hash), role, time.Now().UTC()); err != nil {
			if errors.Is(err, repo.ErrDuplicateUser) {
				continue
			}
			return fmt.Errorf("seed: create %q: %w", u.Username, err)
		}
		slog.Info("seed: created user", "username", u.Username, "role", role)
	}
	return nil
}
