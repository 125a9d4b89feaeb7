package notification

import (
	domain "recharge-service/internal/domain/notification"
	"recharge-service/internal/domain/user"
)

// ListRequest represents the request payload for listing a user's notifications.
type ListRequest struct {
	UserID     int64
	UnreadOnly bool
	Page       int64
	Limit      int64
}

// ListResponse carries a page of notifications and the unread count.
type ListResponse struct {
	Notifications []domain.Notification
	UnreadCount   int64
	Pagination    *user.Pagination
}

// SendRequest represents an admin message to one user.
type SendRequest struct {
	UserID  int64  `validate:"required,gt=0"`
	Title   string `validate:"required,max=100"`
	Message string `validate:"required,max=1000"`
	Type    string `validate:"omitempty,oneof=success error warning info"`
}
