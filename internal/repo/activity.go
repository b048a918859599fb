package repo

import (
	"context"
	"database/sql"

	"github.com/driverly/driverly/internal/models"
)

// ActivityRepo persists signup/login activity entries.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo returns a new ActivityRepo.
func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Log records an activity entry. action is signup|login.
func (r *ActivityRepo) Log(ctx context.Context, username, action string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_log (username, action) VALUES (?, ?)`,
		username, action,
	)
	return err
}

// List returns recent activity entries, newest first.
func (r *ActivityRepo) List(ctx context.Context, limit, offset int) ([]models.ActivityEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, action, created_at FROM activity_log ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
