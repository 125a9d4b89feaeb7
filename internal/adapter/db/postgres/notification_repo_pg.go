package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recharge-service/internal/domain/notification"
	apperrors "recharge-service/pkg/errors"
)

// NotificationRepoPG implements the notification Repository interface using PostgreSQL and GORM.
type NotificationRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewNotificationRepoPG creates a new instance of NotificationRepoPG.
func NewNotificationRepoPG(db *gorm.DB, log *zap.Logger) *NotificationRepoPG {
	return &NotificationRepoPG{db: db, log: log}
}

func toNotification(m *NotificationSchema) *notification.Notification {
	return &notification.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Message:   m.Message,
		Type:      m.Type,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

// Create inserts a notification and fills in its ID and creation time.
func (r *NotificationRepoPG) Create(ctx context.Context, n *notification.Notification) error {
	if n == nil {
		return errors.New("notification cannot be nil")
	}

	model := NotificationSchema{
		UserID:  n.UserID,
		Title:   n.Title,
		Message: n.Message,
		Type:    n.Type,
		Read:    n.Read,
	}
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		r.log.Error("failed to create notification in db", zap.Error(err), zap.Int64("user_id", n.UserID))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	n.ID = model.ID
	n.CreatedAt = model.CreatedAt
	return nil
}

// GetByID retrieves a notification by ID.
func (r *NotificationRepoPG) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	var model NotificationSchema
	if err := conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("notification", fmt.Sprintf("notification not found: id=%d", id))
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return toNotification(&model), nil
}

// ListByUser returns a page of a user's notifications newest first, the total
// number of matches and the number of unread notifications.
func (r *NotificationRepoPG) ListByUser(ctx context.Context, userID int64, unreadOnly bool, page, limit int64) ([]notification.Notification, int64, int64, error) {
	base := func() *gorm.DB {
		return conn(ctx, r.db).Model(&NotificationSchema{}).Where("user_id = ?", userID)
	}

	var unread int64
	if err := base().Where("read = ?", false).Count(&unread).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	q := base()
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	q = q.Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Offset(offset(page, limit)).Limit(int(limit))
	}

	var models []NotificationSchema
	if err := q.Find(&models).Error; err != nil {
		r.log.Error("failed to list notifications from db", zap.Error(err), zap.Int64("user_id", userID))
		return nil, 0, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]notification.Notification, len(models))
	for i := range models {
		out[i] = *toNotification(&models[i])
	}
	return out, total, unread, nil
}

// MarkRead flags one notification as read.
func (r *NotificationRepoPG) MarkRead(ctx context.Context, id int64) error {
	res := conn(ctx, r.db).Model(&NotificationSchema{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("notification", fmt.Sprintf("notification not found: id=%d", id))
	}
	return nil
}

// MarkAllRead flags every unread notification of a user as read and returns
// how many changed.
func (r *NotificationRepoPG) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res := conn(ctx, r.db).Model(&NotificationSchema{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes a notification by ID.
func (r *NotificationRepoPG) Delete(ctx context.Context, id int64) error {
	res := conn(ctx, r.db).Delete(&NotificationSchema{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("notification", fmt.Sprintf("notification not found: id=%d", id))
	}
	return nil
}
