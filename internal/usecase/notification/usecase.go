package notification

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "recharge-service/internal/domain/notification"
	"recharge-service/internal/domain/user"
	"recharge-service/internal/usecase/validation"
	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Repository defines the interface for notification data access operations.
type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, page, limit int64) ([]domain.Notification, int64, int64, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// UserLookup checks that a notification recipient exists.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Service implements the business logic for in-app notifications.
type Service struct {
	repo     Repository
	users    UserLookup
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service.
func New(r Repository, users UserLookup, log *zap.Logger) *Service {
	return &Service{repo: r, users: users, log: log, validate: validation.New()}
}

// List returns a page of the user's notifications newest first.
func (uc *Service) List(ctx context.Context, in ListRequest) (*ListResponse, error) {
	in.Page, in.Limit = user.NormalizePage(in.Page, in.Limit, defaultPageSize, maxPageSize)

	items, total, unread, err := uc.repo.ListByUser(ctx, in.UserID, in.UnreadOnly, in.Page, in.Limit)
	if err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to list notifications", zap.Int64("user_id", in.UserID), zap.Error(err))
		return nil, err
	}

	return &ListResponse{
		Notifications: items,
		UnreadCount:   unread,
		Pagination:    user.NewPagination(total, in.Page, in.Limit),
	}, nil
}

// owned loads a notification and checks that actor may change it.
func (uc *Service) owned(ctx context.Context, actor user.Actor, id int64) (*domain.Notification, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid notification id")
	}
	n, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != actor.UserID {
		// other users' notifications do not exist as far as the caller can tell
		return nil, apperrors.NewNotFoundError("notification", "")
	}
	return n, nil
}

// MarkRead flags one of the caller's notifications as read.
func (uc *Service) MarkRead(ctx context.Context, actor user.Actor, id int64) error {
	n, err := uc.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}
	return uc.repo.MarkRead(ctx, id)
}

// MarkAllRead flags every unread notification of the caller as read.
func (uc *Service) MarkAllRead(ctx context.Context, actor user.Actor) (int64, error) {
	return uc.repo.MarkAllRead(ctx, actor.UserID)
}

// Delete removes one of the caller's notifications.
func (uc *Service) Delete(ctx context.Context, actor user.Actor, id int64) error {
	if _, err := uc.owned(ctx, actor, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// Send delivers an admin message to a user.
func (uc *Service) Send(ctx context.Context, in SendRequest) (*domain.Notification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(uc.validate, in); err != nil {
		return nil, err
	}
	if _, err := uc.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = domain.TypeInfo
	}

	n := &domain.Notification{UserID: in.UserID, Title: in.Title, Message: in.Message, Type: in.Type}
	if err := uc.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	logger.WithContext(ctx, uc.log).Info("notification sent", zap.Int64("user_id", in.UserID), zap.Int64("id", n.ID))
	return n, nil
}

// Notify records a notification on behalf of the system. Failures are logged
// and never fail the caller's operation.
func (uc *Service) Notify(ctx context.Context, userID int64, typ, title, message string) {
	n := &domain.Notification{UserID: userID, Title: title, Message: message, Type: typ}
	if err := uc.repo.Create(ctx, n); err != nil {
		logger.WithContext(ctx, uc.log).Warn("failed to record notification",
			zap.Int64("user_id", userID), zap.String("title", title), zap.Error(err))
	}
}
