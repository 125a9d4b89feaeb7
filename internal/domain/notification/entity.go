package notification

import "time"

// Types
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeWarning = "warning"
	TypeInfo    = "info"
)

// Notification is an in-app message shown to a user.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      string
	Read      bool
	CreatedAt time.Time
}
