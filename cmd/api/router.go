package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driverly/driverly/internal/auth"
	"github.com/driverly/driverly/internal/config"
	"github.com/driverly/driverly/internal/handlers"
	"github.com/driverly/driverly/internal/middleware"
	"github.com/driverly/driverly/internal/models"
	"github.com/driverly/driverly/internal/repo"
)

// newRouter builds the full API router with all middleware and handlers wired
// to the given database. Kept separate from main so integration tests can
// stand up the exact production routing against a mock DB.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(db)
	activityRepo := repo.NewActivityRepo(db)

	authService := auth.NewService(userRepo, activityRepo)
	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour)

	authHandler := &handlers.AuthHandler{Auth: authService, Tokens: tokens}
	userHandler := &handlers.UserHandler{Repo: userRepo}
	activityHandler := &handlers.ActivityHandler{Repo: activityRepo}
	healthHandler := &handlers.HealthHandler{DB: db}

	hsts := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(hsts))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", healthHandler.Health)
	r.Get("/api/test-db", healthHandler.TestDB)

	// Auth endpoints: body cap and per-IP rate limit on top of the base chain.
	authLimiter := middleware.AuthRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.Use(authLimiter.Middleware)
		r.Post("/api/signup", authHandler.Signup)
		r.Post("/api/login", authHandler.Login)
	})

	// Protected endpoints.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(tokens))
		r.Get("/api/me", userHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/api/users", userHandler.ListUsers)
			r.Get("/api/activity", activityHandler.ListActivity)
		})
	})

	return r
}
