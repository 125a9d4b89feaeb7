package recharge

import "context"

// Usecase defines the interface for plan recharges.
type Usecase interface {
	Recharge(ctx context.Context, in Request) (*Response, error)
}
