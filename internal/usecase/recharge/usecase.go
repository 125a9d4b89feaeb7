package recharge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"recharge-service/internal/domain/event"
	"recharge-service/internal/domain/notification"
	"recharge-service/internal/domain/payment"
	"recharge-service/internal/domain/plan"
	"recharge-service/internal/domain/transaction"
	"recharge-service/internal/usecase/validation"
	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/logger"
	"recharge-service/pkg/money"
)

// WalletRepository moves money in and out of a user's wallet.
type WalletRepository interface {
	Debit(ctx context.Context, id, amount int64) (int64, error)
	Credit(ctx context.Context, id, amount int64) (int64, error)
}

// PlanReader loads the plan being purchased.
type PlanReader interface {
	GetByID(ctx context.Context, id int64) (*plan.Plan, error)
}

// TransactionRepository records recharge transactions.
type TransactionRepository interface {
	Create(ctx context.Context, t *transaction.Transaction) error
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// PaymentRepository records the wallet payment behind a recharge.
type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// TxManager runs fn inside one database transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier records in-app notifications. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, userID int64, typ, title, message string)
}

// Service implements plan purchases paid from the wallet.
type Service struct {
	wallet   WalletRepository
	plans    PlanReader
	txns     TransactionRepository
	payments PaymentRepository
	tx       TxManager
	operator payment.Processor
	notifier Notifier
	events   event.Publisher
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service.
func New(
	wallet WalletRepository,
	plans PlanReader,
	txns TransactionRepository,
	payments PaymentRepository,
	tx TxManager,
	operator payment.Processor,
	notifier Notifier,
	events event.Publisher,
	log *zap.Logger,
) *Service {
	return &Service{
		wallet:   wallet,
		plans:    plans,
		txns:     txns,
		payments: payments,
		tx:       tx,
		operator: operator,
		notifier: notifier,
		events:   events,
		log:      log,
		validate: validation.New(),
		now:      time.Now,
	}
}

// Recharge buys a plan for a mobile number with wallet money. The debit and
// the pending records commit before the operator is called, so no row lock
// is held while it works. An insufficient balance records nothing.
func (uc *Service) Recharge(ctx context.Context, in Request) (*Response, error) {
	in.Mobile = strings.TrimSpace(in.Mobile)
	log := logger.WithContext(ctx, uc.log).With(zap.Int64("user_id", in.UserID), zap.Int64("plan_id", in.PlanID))

	if err := validation.Struct(uc.validate, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	p, err := uc.plans.GetByID(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}

	amount, coupon, err := ApplyCoupon(p.Price, in.Coupon)
	if err != nil {
		log.Warn("invalid coupon", zap.String("coupon", in.Coupon))
		return nil, err
	}
	if amount <= 0 {
		return nil, apperrors.NewValidationError("coupon", "coupon cannot cover the full price")
	}

	planID := p.ID
	txn := &transaction.Transaction{
		Reference:      transaction.NewReference(),
		UserID:         in.UserID,
		Type:           transaction.TypeRecharge,
		Amount:         amount,
		OriginalAmount: p.Price,
		Coupon:         coupon,
		Status:         transaction.StatusPending,
		Description:    fmt.Sprintf("%s %s recharge for %s", p.Operator, p.Name, in.Mobile),
		PlanID:         &planID,
		PhoneNumber:    in.Mobile,
		Operator:       p.Operator,
		Method:         payment.MethodWallet,
	}
	pay := &payment.Payment{
		Reference: payment.NewReference(),
		UserID:    in.UserID,
		Amount:    amount,
		Method:    payment.MethodWallet,
		Status:    payment.StatusPending,
	}

	var balance int64
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if balance, err = uc.wallet.Debit(ctx, in.UserID, amount); err != nil {
			return err
		}
		if err := uc.txns.Create(ctx, txn); err != nil {
			return err
		}
		pay.TransactionID = txn.ID
		return uc.payments.Create(ctx, pay)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientBalance) {
			log.Info("recharge rejected: insufficient balance", zap.Int64("amount", amount))
			uc.notifier.Notify(ctx, in.UserID, notification.TypeWarning, "Insufficient Balance",
				"Insufficient wallet balance. Please add money to your wallet.")
			return nil, err
		}
		if apperrors.IsNotFound(err) || ctx.Err() != nil {
			return nil, err
		}
		log.Error("failed to record recharge", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to process recharge", err)
	}
	log = log.With(zap.String("reference", txn.Reference))

	outcome, opErr := uc.operator.Process(ctx, txn.Reference, amount)
	if opErr != nil {
		log.Warn("operator error", zap.Error(opErr))
	}
	approved := opErr == nil && outcome.Approved
	// the debit is committed, so the records must be settled even if the client went away
	settleCtx := context.WithoutCancel(ctx)

	if balance, err = uc.settle(settleCtx, txn, pay, approved, balance); err != nil {
		log.Error("failed to settle recharge", zap.Bool("approved", approved), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to settle recharge", err)
	}

	resp := &Response{
		Success:     txn.Status == transaction.StatusSuccess,
		Transaction: txn,
		Plan:        p,
		Discount:    p.Price - amount,
		Balance:     balance,
	}
	if resp.Success {
		resp.Message = fmt.Sprintf("%s recharge completed for %s", money.Format(amount), in.Mobile)
		log.Info("recharge succeeded", zap.Int64("balance", balance))
		uc.notifier.Notify(settleCtx, in.UserID, notification.TypeSuccess, "Recharge Successful", resp.Message)
		uc.publish(settleCtx, event.RechargeSucceeded, txn, balance)
	} else {
		resp.Message = fmt.Sprintf("%s recharge for %s failed; %s refunded to wallet", p.Operator, in.Mobile, money.Format(amount))
		log.Warn("recharge failed at operator, refunded")
		uc.notifier.Notify(settleCtx, in.UserID, notification.TypeError, "Recharge Failed", resp.Message)
		uc.publish(settleCtx, event.RechargeFailed, txn, balance)
	}
	return resp, nil
}

// settle marks the recharge done, or refunds the debit and marks it failed.
// It returns the wallet balance after settling; balance is the balance
// left by the debit.
func (uc *Service) settle(ctx context.Context, txn *transaction.Transaction, pay *payment.Payment, approved bool, balance int64) (int64, error) {
	txnStatus, payStatus := transaction.StatusSuccess, payment.StatusSuccess
	if !approved {
		txnStatus, payStatus = transaction.StatusFailed, payment.StatusFailed
	}

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if !approved {
			var err error
			if balance, err = uc.wallet.Credit(ctx, txn.UserID, txn.Amount); err != nil {
				return err
			}
		}
		if err := uc.txns.UpdateStatus(ctx, txn.ID, txnStatus); err != nil {
			return err
		}
		return uc.payments.UpdateStatus(ctx, pay.ID, payStatus)
	})
	if err != nil {
		return 0, err
	}
	txn.Status, pay.Status = txnStatus, payStatus
	return balance, nil
}

func (uc *Service) publish(ctx context.Context, name string, txn *transaction.Transaction, balance int64) {
	if uc.events == nil {
		return
	}
	e := event.Event{
		Name:   name,
		Key:    txn.Reference,
		UserID: txn.UserID,
		Payload: map[string]any{
			"amount":          money.ToRupees(txn.Amount),
			"original_amount": money.ToRupees(txn.OriginalAmount),
			"coupon":          txn.Coupon,
			"operator":        txn.Operator,
			"phone_number":    txn.PhoneNumber,
			"status":          txn.Status,
			"balance":         money.ToRupees(balance),
		},
		OccurredAt: uc.now(),
	}
	if err := uc.events.Publish(ctx, e); err != nil {
		uc.log.Warn("failed to publish event", zap.String("event", name), zap.Error(err))
	}
}
