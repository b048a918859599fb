package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/driverly/driverly/internal/auth"
	"github.com/driverly/driverly/internal/repo"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &AuthHandler{
		Auth:   auth.NewService(repo.NewUserRepo(db), nil),
		Tokens: auth.NewTokenManager("test-secret", time.Hour),
	}, mock
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestAuthHandler_Signup(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("jdoe", "j@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := postJSON(t, h.Signup, "/api/signup", map[string]string{
		"username": "jdoe",
		"email":    "j@x.com",
		"password": "longenough",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("Signup status: got %d, want 201 (body: %s)", rr.Code, rr.Body)
	}
	var out struct {
		Message string `json:"message"`
		User    struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.User.Username != "jdoe" || out.User.Email != "j@x.com" {
		t.Errorf("unexpected user: %+v", out.User)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_ShortPassword(t *testing.T) {
	h, mock := newAuthHandler(t)

	rr := postJSON(t, h.Signup, "/api/signup", map[string]string{
		"username": "jdoe",
		"email":    "j@x.com",
		"password": "short",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Signup status: got %d, want 400", rr.Code)
	}
	var out struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := out.Fields["password"]; !ok {
		t.Errorf("expected password field error, got %v", out.Fields)
	}
	// No record is created on rejection.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_Duplicate(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("jdoe", "j@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	rr := postJSON(t, h.Signup, "/api/signup", map[string]string{
		"username": "jdoe",
		"email":    "j@x.com",
		"password": "longenough",
	})

	if rr.Code != http.StatusConflict {
		t.Fatalf("Signup status: got %d, want 409", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_BadJSON(t *testing.T) {
	h, _ := newAuthHandler(t)

	req := httptest.NewRequest("POST", "/api/signup", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Signup status: got %d, want 400", rr.Code)
	}
}

func loginRows(t *testing.T, password, role string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return sqlmock.NewRows([]string{"username", "email", "password_hash", "role", "created_at", "last_login"}).
		AddRow("jdoe", "j@x.com", string(hash), role, time.Now().Add(-24*time.Hour), nil)
}

func TestAuthHandler_Login(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("jdoe").
		WillReturnRows(loginRows(t, "longenough", "driver"))
	mock.ExpectExec(`UPDATE users SET last_login`).
		WithArgs(sqlmock.AnyArg(), "jdoe").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := postJSON(t, h.Login, "/api/login", map[string]string{
		"username": "jdoe",
		"password": "longenough",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200 (body: %s)", rr.Code, rr.Body)
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			Username  string  `json:"username"`
			Email     string  `json:"email"`
			Role      string  `json:"role"`
			LastLogin *string `json:"last_login"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Token == "" {
		t.Error("expected a session token")
	}
	if out.User.Username != "jdoe" || out.User.Role != "driver" {
		t.Errorf("unexpected user: %+v", out.User)
	}
	if out.User.LastLogin == nil {
		t.Error("last_login should be stamped after login")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// Wrong password and unknown username must produce byte-identical bodies.
func TestAuthHandler_Login_GenericUnauthorized(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("jdoe").
		WillReturnRows(loginRows(t, "longenough", "driver"))

	wrongPass := postJSON(t, h.Login, "/api/login", map[string]string{
		"username": "jdoe",
		"password": "wrong",
	})

	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	unknownUser := postJSON(t, h.Login, "/api/login", map[string]string{
		"username": "ghost",
		"password": "whatever",
	})

	if wrongPass.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses: got %d and %d, want 401 for both", wrongPass.Code, unknownUser.Code)
	}
	if wrongPass.Body.String() != unknownUser.Body.String() {
		t.Errorf("401 bodies differ: %q vs %q", wrongPass.Body, unknownUser.Body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h, _ := newAuthHandler(t)

	rr := postJSON(t, h.Login, "/api/login", map[string]string{"username": "jdoe"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Login status: got %d, want 400", rr.Code)
	}
}
