package models

import "time"

// Activity log actions.
const (
	ActionSignup = "signup"
	ActionLogin  = "login"
)

// ActivityEntry represents one activity log row, shown in the admin
// dashboard's recent-activity feed.
type ActivityEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"` // signup, login
	CreatedAt time.Time `json:"created_at"`
}
