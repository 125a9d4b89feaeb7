package transaction

import "time"

// Types
const (
	TypeRecharge = "recharge"
	TypeTopup    = "topup"
)

// Statuses
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Transaction records a wallet movement: a plan recharge (debit) or a wallet top-up (credit).
type Transaction struct {
	ID             int64
	Reference      string
	UserID         int64
	Type           string
	Amount         int64 // paise actually charged or credited
	OriginalAmount int64 // paise before any coupon
	Coupon         string
	Status         string
	Description    string
	PlanID         *int64
	PhoneNumber    string
	Operator       string
	Method         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Filter narrows transaction listings. UserID 0 means all users.
type Filter struct {
	UserID int64
	Type   string
	Status string
	From   *time.Time
	To     *time.Time
	Page   int64
	Limit  int64
}

// Totals aggregates amounts and counts over a set of transactions.
type Totals struct {
	RechargeSuccessAmount int64
	RechargeSuccessCount  int64
	RechargeFailedCount   int64
	TopupSuccessAmount    int64
	TopupSuccessCount     int64
	Count                 int64
}

// OperatorStat groups successful recharges by operator.
type OperatorStat struct {
	Operator string
	Count    int64
	Amount   int64
}
