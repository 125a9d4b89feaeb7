package recharge

import (
	"recharge-service/internal/domain/plan"
	"recharge-service/internal/domain/transaction"
)

// Request represents the request payload for recharging a mobile number.
type Request struct {
	UserID int64  `validate:"required,gt=0"`
	PlanID int64  `validate:"required,gt=0"`
	Mobile string `validate:"required,mobile"`
	Coupon string `validate:"omitempty,max=20"`
}

// Response reports the recharge outcome. An operator failure is not an
// error: the refunded, failed transaction is returned with Success false.
type Response struct {
	Success     bool
	Message     string
	Transaction *transaction.Transaction
	Plan        *plan.Plan
	Discount    int64 // paise
	Balance     int64 // paise
}
