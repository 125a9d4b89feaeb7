package handler

import (
	"time"

	"recharge-service/internal/domain/notification"
	"recharge-service/internal/domain/payment"
	"recharge-service/internal/domain/plan"
	"recharge-service/internal/domain/session"
	"recharge-service/internal/domain/transaction"
	"recharge-service/internal/usecase/user"
	"recharge-service/pkg/money"
)

// Amounts on the wire are rupees; the usecases work in paise.
func rupeesToPaise(r float64) int64 { return money.FromRupees(r) }
func paiseToRupees(p int64) float64 { return money.ToRupees(p) }

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	WalletBalance float64   `json:"walletBalance"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		WalletBalance: paiseToRupees(u.WalletBalance),
		CreatedAt:     u.CreatedAt,
	}
}

// PlanResponse represents the HTTP response for a plan
type PlanResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Operator string  `json:"operator"`
	Price    float64 `json:"price"`
	Data     string  `json:"data"`
	Validity int     `json:"validity"`
	Category string  `json:"category"`
	Benefits string  `json:"benefits"`
	Popular  bool    `json:"popular"`
}

func toPlanResponse(p *plan.Plan) PlanResponse {
	return PlanResponse{
		ID:       p.ID,
		Name:     p.Name,
		Operator: p.Operator,
		Price:    paiseToRupees(p.Price),
		Data:     p.Data,
		Validity: p.Validity,
		Category: p.Category,
		Benefits: p.Benefits,
		Popular:  p.Popular,
	}
}

func toPlanResponses(plans []plan.Plan) []PlanResponse {
	out := make([]PlanResponse, len(plans))
	for i := range plans {
		out[i] = toPlanResponse(&plans[i])
	}
	return out
}

// TransactionResponse represents the HTTP response for a transaction
type TransactionResponse struct {
	ID             int64     `json:"id"`
	Reference      string    `json:"reference"`
	UserID         int64     `json:"userId"`
	Type           string    `json:"type"`
	Amount         float64   `json:"amount"`
	OriginalAmount float64   `json:"originalAmount"`
	Coupon         string    `json:"coupon,omitempty"`
	Status         string    `json:"status"`
	Description    string    `json:"description"`
	PlanID         *int64    `json:"planId,omitempty"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	Operator       string    `json:"operator,omitempty"`
	Method         string    `json:"method"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toTransactionResponse(t *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		Reference:      t.Reference,
		UserID:         t.UserID,
		Type:           t.Type,
		Amount:         paiseToRupees(t.Amount),
		OriginalAmount: paiseToRupees(t.OriginalAmount),
		Coupon:         t.Coupon,
		Status:         t.Status,
		Description:    t.Description,
		PlanID:         t.PlanID,
		PhoneNumber:    t.PhoneNumber,
		Operator:       t.Operator,
		Method:         t.Method,
		CreatedAt:      t.CreatedAt,
	}
}

func toTransactionResponses(txns []transaction.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = toTransactionResponse(&txns[i])
	}
	return out
}

// PaymentResponse represents the HTTP response for a payment
type PaymentResponse struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	UserID        int64     `json:"userId"`
	TransactionID int64     `json:"transactionId"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	CardLast4     string    `json:"cardLast4,omitempty"`
	UPIID         string    `json:"upiId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		Reference:     p.Reference,
		UserID:        p.UserID,
		TransactionID: p.TransactionID,
		Amount:        paiseToRupees(p.Amount),
		Method:        p.Method,
		Status:        p.Status,
		CardLast4:     p.CardLast4,
		UPIID:         p.UPIID,
		CreatedAt:     p.CreatedAt,
	}
}

// NotificationResponse represents the HTTP response for a notification
type NotificationResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// SessionResponse represents the HTTP response for a login session
type SessionResponse struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	Email      string     `json:"email"`
	IP         string     `json:"ip,omitempty"`
	UserAgent  string     `json:"userAgent,omitempty"`
	LoginAt    time.Time  `json:"loginAt"`
	LastSeenAt time.Time  `json:"lastSeenAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	Active     bool       `json:"active"`
}

func toSessionResponse(s *session.UserSession) SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		Email:      s.Email,
		IP:         s.IP,
		UserAgent:  s.UserAgent,
		LoginAt:    s.LoginAt,
		LastSeenAt: s.LastSeenAt,
		EndedAt:    s.EndedAt,
		Active:     s.Active(),
	}
}
