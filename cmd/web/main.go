package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "driverly_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8080"
	envWebPort  = "DRIVERLY_WEB_PORT"
	envAPIURL   = "DRIVERLY_API_URL"
)

// me mirrors the /api/me payload: the signed-in user's public profile.
type me struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	LastLogin *string `json:"last_login"`
	CreatedAt string  `json:"created_at"`
}

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/signup", signupForm)
	r.Post("/signup", signupSubmit(apiBase))
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(apiBase))
	r.Get("/logout", logout)
	r.Get("/about", aboutPage)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(requireAuth(apiBase))
		r.Get("/", redirectDashboard)
		r.Get("/dashboard", dashboard(apiBase))
	})

	log.Printf("Web UI running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requireAuth redirects to /login if the cookie is missing or if the API
// rejects the token. Validating against /api/me means expired tokens bounce
// the user to login before any page renders.
func requireAuth(apiBase string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := r.Cookie(cookieName)
			if err != nil || token.Value == "" {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			_, status, _ := apiGet(apiBase, "/api/me", token.Value)
			if status == http.StatusUnauthorized {
				clearAuthAndRedirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirectDashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func aboutPage(w http.ResponseWriter, r *http.Request) {
	_, signedIn := cookieToken(r)
	renderTemplate(w, "about.html", map[string]interface{}{
		"SignedIn": signedIn,
	})
}

func signupForm(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(cookieName); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	renderTemplate(w, "signup.html", map[string]interface{}{"Username": "", "Email": ""})
}

func signupSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")

		retry := func(errMsg string) {
			renderTemplate(w, "signup.html", map[string]interface{}{
				"Error":    errMsg,
				"Username": username,
				"Email":    email,
			})
		}

		if password != confirm {
			retry("Passwords do not match")
			return
		}

		body := []byte(fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, email, password))
		data, status, err := apiPost(apiBase, "/api/signup", "", body)
		if err != nil {
			retry("Cannot reach API: " + err.Error())
			return
		}
		if status != http.StatusCreated {
			retry(apiErrorMessage(data))
			return
		}
		http.Redirect(w, r, "/login?created=1", http.StatusFound)
	}
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(cookieName); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	var notice string
	if r.URL.Query().Get("created") == "1" {
		notice = "Account created. Sign in to continue."
	}
	renderTemplate(w, "login.html", map[string]interface{}{"Notice": notice, "Username": ""})
}

func loginSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			renderTemplate(w, "login.html", map[string]interface{}{"Error": "Username and password are required", "Username": username})
			return
		}

		body := []byte(fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
		data, status, err := apiPost(apiBase, "/api/login", "", body)
		if err != nil {
			renderTemplate(w, "login.html", map[string]interface{}{"Error": "Cannot reach API: " + err.Error(), "Username": username})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "login.html", map[string]interface{}{"Error": apiErrorMessage(data), "Username": username})
			return
		}

		var out struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
			renderTemplate(w, "login.html", map[string]interface{}{"Error": "Invalid login response", "Username": username})
			return
		}

		next := r.URL.Query().Get("next")
		if next == "" || !strings.HasPrefix(next, "/") {
			next = "/dashboard"
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    out.Token,
			Path:     "/",
			MaxAge:   24 * 3600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, next, http.StatusFound)
	}
}

func logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// clearAuthAndRedirectToLogin clears the token cookie and redirects to login
// with next=current path, so the user lands back where they were.
func clearAuthAndRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

func cookieToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// apiErrorMessage extracts a human-readable message from an API error body.
// Validation errors carry a fields map; everything else has an error string.
func apiErrorMessage(data []byte) string {
	var errResp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil {
		if len(errResp.Fields) > 0 {
			parts := make([]string, 0, len(errResp.Fields))
			for _, msg := range errResp.Fields {
				parts = append(parts, msg)
			}
			return strings.Join(parts, "; ")
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return string(data)
}

// apiGet performs GET to the API with a bearer token.
func apiGet(apiBase, path, token string) ([]byte, int, error) {
	req, _ := http.NewRequest("GET", apiBase+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// apiPost performs POST to the API with an optional token and JSON body.
func apiPost(apiBase, path, token string, body []byte) ([]byte, int, error) {
	req, _ := http.NewRequest("POST", apiBase+path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func dashboard(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, _ := cookieToken(r)

		data, status, err := apiGet(apiBase, "/api/me", tok)
		if err != nil {
			renderTemplate(w, "dashboard.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "dashboard.html", map[string]interface{}{"Error": "API error: " + string(data)})
			return
		}

		var profile me
		if err := json.Unmarshal(data, &profile); err != nil {
			renderTemplate(w, "dashboard.html", map[string]interface{}{"Error": "Invalid profile response"})
			return
		}

		payload := map[string]interface{}{
			"Me":       profile,
			"SignedIn": true,
		}

		// Admins additionally see the user directory and the activity feed.
		if profile.Role == "admin" {
			if users, total, err := fetchUsers(apiBase, tok); err == nil {
				payload["Users"] = users
				payload["UserTotal"] = total
			}
			if activity, err := fetchActivity(apiBase, tok); err == nil {
				payload["Activity"] = activity
			}
		}

		renderTemplate(w, "dashboard.html", payload)
	}
}

type userRow struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	LastLogin *string `json:"last_login"`
	CreatedAt string  `json:"created_at"`
}

func fetchUsers(apiBase, token string) ([]userRow, int, error) {
	data, status, err := apiGet(apiBase, "/api/users?limit=50", token)
	if err != nil {
		return nil, 0, err
	}
	if status != http.StatusOK {
		return nil, 0, fmt.Errorf("api status %d", status)
	}
	var out struct {
		Items []userRow `json:"items"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

type activityRow struct {
	Username  string `json:"username"`
	Action    string `json:"action"`
	CreatedAt string `json:"created_at"`
}

func fetchActivity(apiBase, token string) ([]activityRow, error) {
	data, status, err := apiGet(apiBase, "/api/activity?limit=20", token)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("api status %d", status)
	}
	var out struct {
		Items []activityRow `json:"items"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	layout, _ := templatesFS.ReadFile("templates/layout.html")
	t := template.Must(template.New("").Parse(string(layout)))
	t = template.Must(t.New("").Parse(string(content)))
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("template execute: %v", err)
	}
}
