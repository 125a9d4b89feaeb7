package transaction

import (
	"time"

	domain "recharge-service/internal/domain/transaction"
	"recharge-service/internal/domain/user"
)

// ListRequest represents the request payload for listing transactions.
// UserID is only honoured for admins; 0 lists every user.
type ListRequest struct {
	UserID int64
	Type   string `validate:"omitempty,oneof=recharge topup"`
	Status string `validate:"omitempty,oneof=pending success failed"`
	From   *time.Time
	To     *time.Time
	Page   int64
	Limit  int64
}

// ListResponse carries a page of transactions.
type ListResponse struct {
	Transactions []domain.Transaction
	Pagination   *user.Pagination
}

// Summary is the dashboard view of a user's activity. Amounts are in paise.
type Summary struct {
	TotalSpent          int64
	TotalAdded          int64
	SuccessfulRecharges int64
	FailedRecharges     int64
	SuccessRate         float64 // percent, one decimal
	TransactionCount    int64
}

// MonthlySpend is the amount spent on successful recharges in one month.
type MonthlySpend struct {
	Month  string // YYYY-MM
	Amount int64
	Count  int64
}

// Analytics describes a user's recharge habits. Amounts are in paise.
type Analytics struct {
	TotalSpent        int64
	AverageRecharge   int64
	HighestRecharge   int64
	TotalTransactions int64
	MostUsedOperator  string
	AverageInterval   int64 // days between recharges
	Monthly           []MonthlySpend
	Operators         []domain.OperatorStat
}

// DailyCount is the number of recharges on one calendar day.
type DailyCount struct {
	Date       string // YYYY-MM-DD
	Successful int64
	Failed     int64
	Amount     int64
}

// Overview is the admin dashboard. Amounts are in paise.
type Overview struct {
	TotalUsers        int64
	TotalPlans        int64
	TotalTransactions int64
	TotalRevenue      int64
	TotalTopups       int64
	TodaySuccessful   int64
	TodayFailed       int64
	TodayRevenue      int64
	Operators         []domain.OperatorStat
	Last7Days         []DailyCount
}
