package payment

import "recharge-service/internal/domain/transaction"

// NewReference returns a payment id such as "PAY3F2A9C1B7D4E5F60".
func NewReference() string {
	return transaction.Reference("PAY")
}
