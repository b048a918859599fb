package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the liveness and store-reachability diagnostics the
// dashboards poll.
type HealthHandler struct {
	DB *sql.DB
}

// Health reports process liveness only.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, map[string]string{"status": "ok", "message": "server is running"}, http.StatusOK)
}

// TestDB pings the database and reports reachability.
func (h *HealthHandler) TestDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		slog.Error("database ping failed", "err", err)
		JSONError(w, "database connection failed", http.StatusInternalServerError)
		return
	}
	JSON(w, map[string]string{"message": "database connection successful"}, http.StatusOK)
}
