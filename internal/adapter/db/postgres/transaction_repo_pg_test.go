package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"recharge-service/internal/domain/payment"
	"recharge-service/internal/domain/transaction"
	apperrors "recharge-service/pkg/errors"
)

func seedTransactions(t *testing.T, repo *TransactionRepoPG) {
	t.Helper()
	rows := []transaction.Transaction{
		{Reference: "TXN1", UserID: 1, Type: transaction.TypeRecharge, Amount: 29900, OriginalAmount: 29900, Status: transaction.StatusSuccess, Operator: "Airtel", PhoneNumber: "9876543210"},
		{Reference: "TXN2", UserID: 1, Type: transaction.TypeRecharge, Amount: 9800, OriginalAmount: 9800, Status: transaction.StatusSuccess, Operator: "Jio", PhoneNumber: "9876543210"},
		{Reference: "TXN3", UserID: 1, Type: transaction.TypeRecharge, Amount: 19900, OriginalAmount: 19900, Status: transaction.StatusFailed, Operator: "Airtel", PhoneNumber: "9876543210"},
		{Reference: "TXN4", UserID: 1, Type: transaction.TypeTopup, Amount: 100000, OriginalAmount: 100000, Status: transaction.StatusSuccess, Method: payment.MethodUPI},
		{Reference: "TXN5", UserID: 2, Type: transaction.TypeRecharge, Amount: 34900, OriginalAmount: 34900, Status: transaction.StatusSuccess, Operator: "Airtel", PhoneNumber: "9123456789"},
	}
	for i := range rows {
		require.NoError(t, repo.Create(context.Background(), &rows[i]))
		assert.Positive(t, rows[i].ID)
	}
}

func TestTransactionRepoPG_CreateGetUpdate(t *testing.T) {
	repo := NewTransactionRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	planID := int64(7)
	txn := &transaction.Transaction{Reference: "TXNABC", UserID: 1, Type: transaction.TypeRecharge, Amount: 23920, OriginalAmount: 29900, Coupon: "SAVE20", Status: transaction.StatusPending, PlanID: &planID}
	require.NoError(t, repo.Create(ctx, txn))
	assert.False(t, txn.CreatedAt.IsZero())

	require.NoError(t, repo.UpdateStatus(ctx, txn.ID, transaction.StatusSuccess))

	got, err := repo.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusSuccess, got.Status)
	assert.Equal(t, "SAVE20", got.Coupon)
	require.NotNil(t, got.PlanID)
	assert.Equal(t, planID, *got.PlanID)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(repo.UpdateStatus(ctx, 999, transaction.StatusFailed)))
}

func TestTransactionRepoPG_List(t *testing.T) {
	repo := NewTransactionRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	seedTransactions(t, repo)
	ctx := context.Background()

	txns, total, err := repo.List(ctx, transaction.Filter{UserID: 1, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, txns, 2)
	assert.Equal(t, "TXN4", txns[0].Reference, "newest first")

	txns, total, err = repo.List(ctx, transaction.Filter{UserID: 1, Type: transaction.TypeRecharge, Status: transaction.StatusSuccess})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, txns, 2)

	_, total, err = repo.List(ctx, transaction.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	future := time.Now().Add(time.Hour)
	_, total, err = repo.List(ctx, transaction.Filter{From: &future})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestTransactionRepoPG_Aggregates(t *testing.T) {
	repo := NewTransactionRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	seedTransactions(t, repo)
	ctx := context.Background()

	totals, err := repo.Totals(ctx, transaction.Filter{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, transaction.Totals{
		RechargeSuccessAmount: 39700,
		RechargeSuccessCount:  2,
		RechargeFailedCount:   1,
		TopupSuccessAmount:    100000,
		TopupSuccessCount:     1,
		Count:                 4,
	}, totals)

	empty, err := repo.Totals(ctx, transaction.Filter{UserID: 99})
	require.NoError(t, err)
	assert.Equal(t, transaction.Totals{}, empty)

	stats, err := repo.OperatorStats(ctx, transaction.Filter{})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, transaction.OperatorStat{Operator: "Airtel", Count: 2, Amount: 64800}, stats[0])
	assert.Equal(t, transaction.OperatorStat{Operator: "Jio", Count: 1, Amount: 9800}, stats[1])

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestPaymentRepoPG(t *testing.T) {
	repo := NewPaymentRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	p := &payment.Payment{Reference: "PAY1", UserID: 1, TransactionID: 10, Amount: 50000, Method: payment.MethodCard, Status: payment.StatusPending, CardLast4: "4242"}
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.Create(ctx, &payment.Payment{Reference: "PAY2", UserID: 2, TransactionID: 11, Amount: 1000, Method: payment.MethodUPI, Status: payment.StatusSuccess, UPIID: "u@upi"}))

	require.NoError(t, repo.UpdateStatus(ctx, p.ID, payment.StatusSuccess))
	got, err := repo.GetByTransactionID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, got.Status)
	assert.Equal(t, "4242", got.CardLast4)

	list, total, err := repo.List(ctx, payment.Filter{UserID: 2, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "u@upi", list[0].UPIID)

	_, total, err = repo.List(ctx, payment.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = repo.GetByTransactionID(ctx, 404)
	assert.True(t, apperrors.IsNotFound(err))
}
