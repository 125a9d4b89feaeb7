package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recharge-service/internal/domain/payment"
	apperrors "recharge-service/pkg/errors"
)

// PaymentRepoPG implements the payment Repository interface using PostgreSQL and GORM.
type PaymentRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewPaymentRepoPG creates a new instance of PaymentRepoPG.
func NewPaymentRepoPG(db *gorm.DB, log *zap.Logger) *PaymentRepoPG {
	return &PaymentRepoPG{db: db, log: log}
}

func toPayment(m *PaymentSchema) *payment.Payment {
	return &payment.Payment{
		ID:            m.ID,
		Reference:     m.Reference,
		UserID:        m.UserID,
		TransactionID: m.TransactionID,
		Amount:        m.Amount,
		Method:        m.Method,
		Status:        m.Status,
		CardLast4:     m.CardLast4,
		UPIID:         m.UPIID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Create inserts a payment and fills in its ID and timestamps.
func (r *PaymentRepoPG) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return errors.New("payment cannot be nil")
	}

	model := PaymentSchema{
		Reference:     p.Reference,
		UserID:        p.UserID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		CardLast4:     p.CardLast4,
		UPIID:         p.UPIID,
	}
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		r.log.Error("failed to create payment in db", zap.Error(err), zap.String("reference", p.Reference))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateStatus sets the status of a payment.
func (r *PaymentRepoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	res := conn(ctx, r.db).Model(&PaymentSchema{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		r.log.Error("failed to update payment status", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to update payment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("payment", fmt.Sprintf("payment not found: id=%d", id))
	}
	return nil
}

// List retrieves payments newest first with the total number of matches.
func (r *PaymentRepoPG) List(ctx context.Context, f payment.Filter) ([]payment.Payment, int64, error) {
	q := conn(ctx, r.db).Model(&PaymentSchema{})
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	q = q.Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Offset(offset(f.Page, f.Limit)).Limit(int(f.Limit))
	}

	var models []PaymentSchema
	if err := q.Find(&models).Error; err != nil {
		r.log.Error("failed to list payments from db", zap.Error(err), zap.Int64("user_id", f.UserID))
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	out := make([]payment.Payment, len(models))
	for i := range models {
		out[i] = *toPayment(&models[i])
	}
	return out, total, nil
}

// GetByTransactionID retrieves the payment recorded for a transaction.
func (r *PaymentRepoPG) GetByTransactionID(ctx context.Context, txnID int64) (*payment.Payment, error) {
	var model PaymentSchema
	if err := conn(ctx, r.db).Where("transaction_id = ?", txnID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment", fmt.Sprintf("payment not found: transaction_id=%d", txnID))
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toPayment(&model), nil
}
