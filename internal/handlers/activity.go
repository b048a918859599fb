package handlers

import (
	"net/http"
	"strconv"

	"github.com/driverly/driverly/internal/models"
	"github.com/driverly/driverly/internal/repo"
)

// ActivityHandler serves the admin recent-activity feed.
type ActivityHandler struct {
	Repo *repo.ActivityRepo
}

// ListActivity returns recent signup/login entries. Query: limit (default 50), offset (default 0).
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.ActivityEntry{}
	}

	JSON(w, map[string]interface{}{
		"items":  entries,
		"limit":  limit,
		"offset": offset,
	}, http.StatusOK)
}
