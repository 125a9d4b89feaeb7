package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recharge-service/internal/domain/transaction"
	apperrors "recharge-service/pkg/errors"
)

const totalsSelect = `
COALESCE(SUM(CASE WHEN type = 'recharge' AND status = 'success' THEN amount ELSE 0 END), 0) AS recharge_success_amount,
COALESCE(SUM(CASE WHEN type = 'recharge' AND status = 'success' THEN 1 ELSE 0 END), 0) AS recharge_success_count,
COALESCE(SUM(CASE WHEN type = 'recharge' AND status = 'failed' THEN 1 ELSE 0 END), 0) AS recharge_failed_count,
COALESCE(SUM(CASE WHEN type = 'topup' AND status = 'success' THEN amount ELSE 0 END), 0) AS topup_success_amount,
COALESCE(SUM(CASE WHEN type = 'topup' AND status = 'success' THEN 1 ELSE 0 END), 0) AS topup_success_count,
COUNT(*) AS count`

// TransactionRepoPG implements the transaction Repository interface using PostgreSQL and GORM.
type TransactionRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewTransactionRepoPG creates a new instance of TransactionRepoPG.
func NewTransactionRepoPG(db *gorm.DB, log *zap.Logger) *TransactionRepoPG {
	return &TransactionRepoPG{db: db, log: log}
}

func toTransaction(m *TransactionSchema) *transaction.Transaction {
	return &transaction.Transaction{
		ID:             m.ID,
		Reference:      m.Reference,
		UserID:         m.UserID,
		Type:           m.Type,
		Amount:         m.Amount,
		OriginalAmount: m.OriginalAmount,
		Coupon:         m.Coupon,
		Status:         m.Status,
		Description:    m.Description,
		PlanID:         m.PlanID,
		PhoneNumber:    m.PhoneNumber,
		Operator:       m.Operator,
		Method:         m.Method,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// Create inserts a transaction and fills in its ID and timestamps.
func (r *TransactionRepoPG) Create(ctx context.Context, t *transaction.Transaction) error {
	if t == nil {
		return errors.New("transaction cannot be nil")
	}

	model := TransactionSchema{
		Reference:      t.Reference,
		UserID:         t.UserID,
		Type:           t.Type,
		Amount:         t.Amount,
		OriginalAmount: t.OriginalAmount,
		Coupon:         t.Coupon,
		Status:         t.Status,
		Description:    t.Description,
		PlanID:         t.PlanID,
		PhoneNumber:    t.PhoneNumber,
		Operator:       t.Operator,
		Method:         t.Method,
	}
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		r.log.Error("failed to create transaction in db", zap.Error(err), zap.String("reference", t.Reference))
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	t.ID = model.ID
	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateStatus sets the status of a transaction.
func (r *TransactionRepoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	res := conn(ctx, r.db).Model(&TransactionSchema{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		r.log.Error("failed to update transaction status", zap.Error(res.Error), zap.Int64("id", id), zap.String("status", status))
		return fmt.Errorf("failed to update transaction status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("transaction", fmt.Sprintf("transaction not found: id=%d", id))
	}
	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepoPG) GetByID(ctx context.Context, id int64) (*transaction.Transaction, error) {
	var model TransactionSchema
	if err := conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("transaction", fmt.Sprintf("transaction not found: id=%d", id))
		}
		r.log.Error("failed to get transaction from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return toTransaction(&model), nil
}

func (r *TransactionRepoPG) filtered(ctx context.Context, f transaction.Filter) *gorm.DB {
	q := conn(ctx, r.db).Model(&TransactionSchema{})
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}

// List retrieves transactions newest first with the total number of matches.
// A zero f.Limit returns every match.
func (r *TransactionRepoPG) List(ctx context.Context, f transaction.Filter) ([]transaction.Transaction, int64, error) {
	q := r.filtered(ctx, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.log.Error("failed to count transactions", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	q = q.Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Offset(offset(f.Page, f.Limit)).Limit(int(f.Limit))
	}

	var models []TransactionSchema
	if err := q.Find(&models).Error; err != nil {
		r.log.Error("failed to list transactions from db", zap.Error(err), zap.Int64("user_id", f.UserID))
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	txns := make([]transaction.Transaction, len(models))
	for i := range models {
		txns[i] = *toTransaction(&models[i])
	}
	return txns, total, nil
}

// Totals aggregates amounts and counts over the transactions matching f.
// Type, Status and paging fields of f are ignored.
func (r *TransactionRepoPG) Totals(ctx context.Context, f transaction.Filter) (transaction.Totals, error) {
	f.Type, f.Status = "", ""

	var t transaction.Totals
	if err := r.filtered(ctx, f).Select(totalsSelect).Scan(&t).Error; err != nil {
		r.log.Error("failed to aggregate transactions", zap.Error(err), zap.Int64("user_id", f.UserID))
		return transaction.Totals{}, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	return t, nil
}

// OperatorStats groups successful recharges by operator, busiest first.
func (r *TransactionRepoPG) OperatorStats(ctx context.Context, f transaction.Filter) ([]transaction.OperatorStat, error) {
	f.Type, f.Status = transaction.TypeRecharge, transaction.StatusSuccess

	var stats []transaction.OperatorStat
	err := r.filtered(ctx, f).
		Select("operator, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("operator").
		Order("count DESC, operator ASC").
		Scan(&stats).Error
	if err != nil {
		r.log.Error("failed to aggregate operator stats", zap.Error(err))
		return nil, fmt.Errorf("failed to aggregate operator stats: %w", err)
	}
	return stats, nil
}

// Count returns the number of transactions.
func (r *TransactionRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&TransactionSchema{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}
