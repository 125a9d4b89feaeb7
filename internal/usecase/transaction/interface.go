package transaction

import (
	"context"

	domain "recharge-service/internal/domain/transaction"
	"recharge-service/internal/domain/user"
)

// Usecase defines the interface for transaction reporting.
type Usecase interface {
	History(ctx context.Context, actor user.Actor, in ListRequest) (*ListResponse, error)
	Get(ctx context.Context, actor user.Actor, id int64) (*domain.Transaction, error)
	Summary(ctx context.Context, userID int64) (*Summary, error)
	Analytics(ctx context.Context, userID int64) (*Analytics, error)
	AdminOverview(ctx context.Context) (*Overview, error)
}
