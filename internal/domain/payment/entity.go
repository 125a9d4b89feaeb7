package payment

import (
	"context"
	"time"
)

// Methods accepted for wallet top-ups. Recharges are always paid with MethodWallet.
const (
	MethodUPI        = "upi"
	MethodCard       = "card"
	MethodNetBanking = "netbanking"
	MethodWallet     = "wallet"
)

// Statuses
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Payment is the money-movement record behind a transaction.
type Payment struct {
	ID            int64
	Reference     string
	UserID        int64
	TransactionID int64
	Amount        int64 // paise
	Method        string
	Status        string
	CardLast4     string
	UPIID         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Outcome is what a payment processor reports back.
type Outcome struct {
	Approved   bool
	ProviderID string
	Reason     string
}

// Filter narrows payment listings. UserID 0 means all users.
type Filter struct {
	UserID int64
	Status string
	Page   int64
	Limit  int64
}

// Processor moves money with an external party: a payment gateway for
// top-ups or an operator for recharges.
type Processor interface {
	Process(ctx context.Context, reference string, amount int64) (Outcome, error)
}
