package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recharge-service/internal/adapter/gin/middleware"
	"recharge-service/internal/usecase/notification"
)

// NotificationHandler handles in-app notification requests
type NotificationHandler struct {
	uc  notification.Usecase
	log *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(uc notification.Usecase, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{uc: uc, log: log}
}

// SendNotificationRequest represents the HTTP request body for an admin message
type SendNotificationRequest struct {
	UserID  int64  `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ListNotificationsResponse carries notifications and the unread count
type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	unread := queryBool(c, "unread")
	resp, err := h.uc.List(c.Request.Context(), notification.ListRequest{
		UserID:     middleware.ActorFrom(c).UserID,
		UnreadOnly: unread != nil && *unread,
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	items := make([]NotificationResponse, len(resp.Notifications))
	for i := range resp.Notifications {
		items[i] = toNotificationResponse(&resp.Notifications[i])
	}
	respondList(c, ListNotificationsResponse{Notifications: items, UnreadCount: resp.UnreadCount}, resp.Pagination)
}

// MarkRead handles PATCH /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.uc.MarkRead(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id}, "Notification marked as read")
}

// MarkAllRead handles POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.uc.MarkAllRead(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updated": n}, "All notifications marked as read")
}

// Delete handles DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id}, "Notification deleted")
}

// Send handles POST /api/notifications (admin)
func (h *NotificationHandler) Send(c *gin.Context) {
	var req SendNotificationRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	n, err := h.uc.Send(c.Request.Context(), notification.SendRequest{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, toNotificationResponse(n), "Notification sent")
}
