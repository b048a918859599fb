package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/driverly/driverly/internal/auth"
	"github.com/driverly/driverly/internal/config"
	"github.com/driverly/driverly/internal/db"
	"github.com/driverly/driverly/internal/repo"
	"github.com/driverly/driverly/internal/stats"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	ctx := context.Background()

	// Startup order: store first, then migrations, then seeding, then serve.
	database, err := db.Connect(ctx, cfg.DSN(), cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		slog.Error("connect to database", "err", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("database connection established")

	if err := db.Migrate(database); err != nil {
		slog.Error("run migrations", "err", err)
		os.Exit(1)
	}

	userRepo := repo.NewUserRepo(database)
	if cfg.SeedPath != "" {
		if err := auth.SeedFromFile(ctx, userRepo, cfg.SeedPath); err != nil {
			slog.Error("seed accounts", "path", cfg.SeedPath, "err", err)
			os.Exit(1)
		}
	}

	statsCron, err := stats.Run(userRepo, cfg.StatsCronExpr)
	if err != nil {
		slog.Error("start stats collector", "cron", cfg.StatsCronExpr, "err", err)
		os.Exit(1)
	}
	defer statsCron.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		slog.Info("listening with TLS", "addr", srv.Addr)
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		slog.Info("listening", "addr", srv.Addr)
		err = srv.ListenAndServe()
	}
	if err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
