package notification

import (
	"context"

	domain "recharge-service/internal/domain/notification"
	"recharge-service/internal/domain/user"
)

// Usecase defines the interface for in-app notification operations.
type Usecase interface {
	List(ctx context.Context, in ListRequest) (*ListResponse, error)
	MarkRead(ctx context.Context, actor user.Actor, id int64) error
	MarkAllRead(ctx context.Context, actor user.Actor) (int64, error)
	Delete(ctx context.Context, actor user.Actor, id int64) error
	Send(ctx context.Context, in SendRequest) (*domain.Notification, error)
}
