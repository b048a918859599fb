package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/driverly/driverly/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret-for-integration",
		JWTExpireHours: 24,
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func userRows(t *testing.T, username, email, password, role string) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{"username", "email", "password_hash", "role", "created_at", "last_login"}).
		AddRow(username, email, mustHash(t, password), role, time.Now().Add(-24*time.Hour), nil)
}

// TestAPI_SignupThenLoginThenMe walks the main user journey end to end
// through the production router: create an account, authenticate, and fetch
// the session's own profile with the issued token.
func TestAPI_SignupThenLoginThenMe(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Signup: uniqueness pre-check, insert, activity entry.
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("jdoe", "j@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO activity_log`).
		WithArgs("jdoe", "signup").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// Login: lookup, single last_login write, activity entry.
	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("jdoe").
		WillReturnRows(userRows(t, "jdoe", "j@x.com", "longenough", "driver"))
	mock.ExpectExec(`UPDATE users SET last_login`).
		WithArgs(sqlmock.AnyArg(), "jdoe").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO activity_log`).
		WithArgs("jdoe", "login").
		WillReturnResult(sqlmock.NewResult(2, 1))

	// GET /api/me: lookup by the token's username.
	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("jdoe").
		WillReturnRows(userRows(t, "jdoe", "j@x.com", "longenough", "driver"))

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	// 1) Signup
	signupBody, _ := json.Marshal(map[string]string{
		"username": "jdoe",
		"email":    "j@x.com",
		"password": "longenough",
	})
	signupResp, err := http.Post(srv.URL+"/api/signup", "application/json", bytes.NewReader(signupBody))
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer signupResp.Body.Close()
	if signupResp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status: got %d, want 201", signupResp.StatusCode)
	}

	// 2) Login
	loginBody, _ := json.Marshal(map[string]string{
		"username": "jdoe",
		"password": "longenough",
	})
	loginResp, err := http.Post(srv.URL+"/api/login", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", loginResp.StatusCode)
	}
	var loginOut struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginOut); err != nil || loginOut.Token == "" {
		t.Fatalf("login response: %v (token %q)", err, loginOut.Token)
	}
	if loginOut.User.Role != "driver" {
		t.Errorf("signup role: got %q, want driver", loginOut.User.Role)
	}

	// 3) GET /api/me with Bearer token
	req, _ := http.NewRequest("GET", srv.URL+"/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginOut.Token)
	meResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	defer meResp.Body.Close()
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/me status: got %d, want 200", meResp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_AdminListUsers checks that an admin token can read the user list
// while a driver token gets 403.
func TestAPI_AdminListUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Admin login.
	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("admin1").
		WillReturnRows(userRows(t, "admin1", "a@x.com", "adminpassword", "admin"))
	mock.ExpectExec(`UPDATE users SET last_login`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO activity_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// Driver login.
	mock.ExpectQuery(`SELECT username, email, password_hash`).
		WithArgs("jdoe").
		WillReturnRows(userRows(t, "jdoe", "j@x.com", "longenough", "driver"))
	mock.ExpectExec(`UPDATE users SET last_login`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO activity_log`).
		WillReturnResult(sqlmock.NewResult(2, 1))

	// Admin list request.
	mock.ExpectQuery(`SELECT username, email, role, created_at, last_login`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"username", "email", "role", "created_at", "last_login"}).
			AddRow("jdoe", "j@x.com", "driver", time.Now(), nil))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	adminToken := login(t, srv.URL, "admin1", "adminpassword")
	driverToken := login(t, srv.URL, "jdoe", "longenough")

	// Admin can list users.
	req, _ := http.NewRequest("GET", srv.URL+"/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/users as admin: got %d, want 200", resp.StatusCode)
	}

	// Driver is forbidden.
	req, _ = http.NewRequest("GET", srv.URL+"/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+driverToken)
	resp2, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusForbidden {
		t.Fatalf("GET /api/users as driver: got %d, want 403", resp2.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(baseURL+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status for %s: got %d, want 200", username, resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Token == "" {
		t.Fatalf("login response: %v", err)
	}
	return out.Token
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/health status: got %d, want 200", resp.StatusCode)
	}
}

// TestAPI_MeRequiresToken checks the protected group rejects anonymous requests.
func TestAPI_MeRequiresToken(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/me")
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /api/me without token: got %d, want 401", resp.StatusCode)
	}
}
