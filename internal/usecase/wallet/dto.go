package wallet

import (
	"recharge-service/internal/domain/payment"
	"recharge-service/internal/domain/transaction"
	"recharge-service/internal/domain/user"
)

// CardDetails are only checked for shape and never stored beyond the last four digits.
type CardDetails struct {
	Number string `validate:"required,numeric,min=12,max=19"`
	Expiry string `validate:"required,cardexpiry"`
	CVV    string `validate:"required,cvv"`
	Name   string `validate:"required,min=2,max=100"`
}

// TopupRequest represents the request payload for adding money to the wallet.
type TopupRequest struct {
	UserID int64        `validate:"required,gt=0"`
	Amount int64        `validate:"gt=0"` // paise
	Method string       `validate:"required,oneof=upi card netbanking wallet"`
	UPIID  string       `validate:"omitempty,upi"`
	Card   *CardDetails // required for card payments
}

// TopupResponse reports the outcome of a top-up. A declined payment is not an
// error: the failed transaction is returned with Success false.
type TopupResponse struct {
	Success     bool
	Message     string
	Transaction *transaction.Transaction
	Payment     *payment.Payment
	Balance     int64
}

// ListPaymentsRequest represents the request payload for listing payments.
type ListPaymentsRequest struct {
	UserID int64 // admin only; 0 lists every user
	Status string `validate:"omitempty,oneof=pending success failed"`
	Page   int64
	Limit  int64
}

// ListPaymentsResponse carries a page of payments.
type ListPaymentsResponse struct {
	Payments   []payment.Payment
	Pagination *user.Pagination
}
