package wallet

import (
	"context"

	"recharge-service/internal/domain/user"
)

// Usecase defines the interface for wallet operations.
type Usecase interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	Topup(ctx context.Context, in TopupRequest) (*TopupResponse, error)
	ListPayments(ctx context.Context, actor user.Actor, in ListPaymentsRequest) (*ListPaymentsResponse, error)
}
