package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/driverly/driverly/internal/auth"
	"github.com/driverly/driverly/internal/metrics"
	"github.com/driverly/driverly/internal/models"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Auth   *auth.Service
	Tokens *auth.TokenManager
}

// ==========================
// Signup (password stored as bcrypt hash; role always driver)
// ==========================
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.Auth.Signup(r.Context(), auth.SignupInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		var ve *auth.ValidationError
		switch {
		case errors.As(err, &ve):
			JSONValidationError(w, "validation failed", ve.Fields, http.StatusBadRequest)
		case errors.Is(err, auth.ErrUserExists):
			JSONError(w, auth.ErrUserExists.Error(), http.StatusConflict)
		default:
			slog.Error("signup failed", "err", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}

	metrics.IncSignups()
	JSON(w, map[string]interface{}{
		"message": "user created successfully",
		"user": map[string]string{
			"username": user.Username,
			"email":    user.Email,
		},
	}, http.StatusCreated)
}

// ==========================
// Login (generic 401 for unknown user and wrong password)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.Auth.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		var ve *auth.ValidationError
		switch {
		case errors.As(err, &ve):
			JSONValidationError(w, "validation failed", ve.Fields, http.StatusBadRequest)
		case errors.Is(err, auth.ErrInvalidCredentials):
			metrics.IncLogins("failure")
			JSONError(w, auth.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		default:
			slog.Error("login failed", "err", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}

	token, err := h.Tokens.Issue(user)
	if err != nil {
		slog.Error("issue token", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncLogins("success")
	JSON(w, loginResponse{Token: token, User: user.Public()}, http.StatusOK)
}

type loginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}
