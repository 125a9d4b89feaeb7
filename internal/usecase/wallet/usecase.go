package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"recharge-service/internal/domain/event"
	"recharge-service/internal/domain/notification"
	"recharge-service/internal/domain/payment"
	"recharge-service/internal/domain/transaction"
	"recharge-service/internal/domain/user"
	"recharge-service/internal/usecase/validation"
	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/logger"
	"recharge-service/pkg/money"
	"recharge-service/pkg/security"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var methodNames = map[string]string{
	payment.MethodUPI:        "UPI",
	payment.MethodCard:       "Card",
	payment.MethodNetBanking: "Net Banking",
	payment.MethodWallet:     "Wallet",
}

// UserRepository is the part of the user store the wallet needs.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	Credit(ctx context.Context, id, amount int64) (int64, error)
}

// TransactionRepository records top-up transactions.
type TransactionRepository interface {
	Create(ctx context.Context, t *transaction.Transaction) error
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// PaymentRepository records the payments behind transactions.
type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context, f payment.Filter) ([]payment.Payment, int64, error)
}

// TxManager runs fn inside one database transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier records in-app notifications. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, userID int64, typ, title, message string)
}

// Limits bounds a single top-up, in paise.
type Limits struct {
	Min int64
	Max int64
}

// Service implements wallet balance and top-up logic.
type Service struct {
	users    UserRepository
	txns     TransactionRepository
	payments PaymentRepository
	tx       TxManager
	gateway  payment.Processor
	notifier Notifier
	events   event.Publisher
	limits   Limits
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service.
func New(
	users UserRepository,
	txns TransactionRepository,
	payments PaymentRepository,
	tx TxManager,
	gateway payment.Processor,
	notifier Notifier,
	events event.Publisher,
	limits Limits,
	log *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		txns:     txns,
		payments: payments,
		tx:       tx,
		gateway:  gateway,
		notifier: notifier,
		events:   events,
		limits:   limits,
		log:      log,
		validate: validation.New(),
		now:      time.Now,
	}
}

// Balance returns the wallet balance in paise.
func (uc *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.WalletBalance, nil
}

func (uc *Service) validateTopup(in *TopupRequest) error {
	in.UPIID = strings.TrimSpace(in.UPIID)
	if in.Card != nil {
		in.Card.Number = security.NormalizeCardNumber(in.Card.Number)
		in.Card.Name = strings.TrimSpace(in.Card.Name)
	}
	if err := validation.Struct(uc.validate, in); err != nil {
		return err
	}

	if in.Amount < uc.limits.Min {
		return apperrors.NewValidationError("amount", "minimum top-up amount is "+money.Format(uc.limits.Min))
	}
	if uc.limits.Max > 0 && in.Amount > uc.limits.Max {
		return apperrors.NewValidationError("amount", "maximum top-up amount is "+money.Format(uc.limits.Max))
	}

	switch in.Method {
	case payment.MethodUPI:
		if in.UPIID == "" {
			return apperrors.NewValidationError("upi_id", "UPIID is required")
		}
	case payment.MethodCard:
		if in.Card == nil {
			return apperrors.NewValidationError("card", "card details are required")
		}
	}
	return nil
}

// Topup adds money to the wallet through the payment gateway. The pending
// transaction and payment are committed before the gateway is called, and
// the wallet is only credited when the gateway approves.
func (uc *Service) Topup(ctx context.Context, in TopupRequest) (*TopupResponse, error) {
	log := logger.WithContext(ctx, uc.log).With(zap.Int64("user_id", in.UserID))

	if err := uc.validateTopup(&in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}
	if _, err := uc.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	method := methodNames[in.Method]
	txn := &transaction.Transaction{
		Reference:      transaction.NewReference(),
		UserID:         in.UserID,
		Type:           transaction.TypeTopup,
		Amount:         in.Amount,
		OriginalAmount: in.Amount,
		Status:         transaction.StatusPending,
		Description:    "Wallet top-up via " + method,
		Method:         in.Method,
	}
	pay := &payment.Payment{
		Reference: payment.NewReference(),
		UserID:    in.UserID,
		Amount:    in.Amount,
		Method:    in.Method,
		Status:    payment.StatusPending,
		UPIID:     in.UPIID,
	}
	if in.Card != nil {
		pay.CardLast4 = security.CardLast4(in.Card.Number)
	}

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.txns.Create(ctx, txn); err != nil {
			return err
		}
		pay.TransactionID = txn.ID
		return uc.payments.Create(ctx, pay)
	})
	if err != nil {
		log.Error("failed to record top-up", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to record top-up", err)
	}
	log = log.With(zap.String("reference", txn.Reference))
	log.Info("top-up pending", zap.Int64("amount", in.Amount), zap.String("method", in.Method))

	outcome, gwErr := uc.gateway.Process(ctx, pay.Reference, in.Amount)
	// the records must be settled even if the client went away
	settleCtx := context.WithoutCancel(ctx)

	if gwErr != nil || !outcome.Approved {
		if gwErr != nil {
			log.Warn("payment gateway error", zap.Error(gwErr))
		}
		return uc.failTopup(settleCtx, log, txn, pay, method)
	}

	var balance int64
	err = uc.tx.WithinTx(settleCtx, func(ctx context.Context) error {
		var err error
		if balance, err = uc.users.Credit(ctx, in.UserID, in.Amount); err != nil {
			return err
		}
		if err := uc.txns.UpdateStatus(ctx, txn.ID, transaction.StatusSuccess); err != nil {
			return err
		}
		return uc.payments.UpdateStatus(ctx, pay.ID, payment.StatusSuccess)
	})
	if err != nil {
		log.Error("failed to settle approved top-up", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to credit wallet", err)
	}
	txn.Status = transaction.StatusSuccess
	pay.Status = payment.StatusSuccess

	log.Info("top-up succeeded", zap.Int64("balance", balance))
	msg := fmt.Sprintf("%s added to wallet via %s", money.Format(in.Amount), method)
	uc.notifier.Notify(settleCtx, in.UserID, notification.TypeSuccess, "Payment Successful", msg)
	uc.publish(settleCtx, event.TopupSucceeded, txn, balance)

	return &TopupResponse{Success: true, Message: msg, Transaction: txn, Payment: pay, Balance: balance}, nil
}

func (uc *Service) failTopup(ctx context.Context, log *zap.Logger, txn *transaction.Transaction, pay *payment.Payment, method string) (*TopupResponse, error) {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.txns.UpdateStatus(ctx, txn.ID, transaction.StatusFailed); err != nil {
			return err
		}
		return uc.payments.UpdateStatus(ctx, pay.ID, payment.StatusFailed)
	})
	if err != nil {
		log.Error("failed to mark top-up failed", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to record declined top-up", err)
	}
	txn.Status = transaction.StatusFailed
	pay.Status = payment.StatusFailed

	balance, err := uc.Balance(ctx, txn.UserID)
	if err != nil {
		return nil, err
	}

	log.Info("top-up declined")
	msg := fmt.Sprintf("Failed to add %s via %s", money.Format(txn.Amount), method)
	uc.notifier.Notify(ctx, txn.UserID, notification.TypeError, "Payment Failed", msg)
	uc.publish(ctx, event.TopupFailed, txn, balance)

	return &TopupResponse{Success: false, Message: msg, Transaction: txn, Payment: pay, Balance: balance}, nil
}

// ListPayments returns the caller's payments, or every user's payments for admins.
func (uc *Service) ListPayments(ctx context.Context, actor user.Actor, in ListPaymentsRequest) (*ListPaymentsResponse, error) {
	if err := validation.Struct(uc.validate, in); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		in.UserID = actor.UserID
	}
	in.Page, in.Limit = user.NormalizePage(in.Page, in.Limit, defaultPageSize, maxPageSize)

	items, total, err := uc.payments.List(ctx, payment.Filter{UserID: in.UserID, Status: in.Status, Page: in.Page, Limit: in.Limit})
	if err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to list payments", zap.Error(err))
		return nil, err
	}
	return &ListPaymentsResponse{Payments: items, Pagination: user.NewPagination(total, in.Page, in.Limit)}, nil
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
			"amount":  money.ToRupees(txn.Amount),
			"method":  txn.Method,
			"status":  txn.Status,
			"balance": money.ToRupees(balance),
		},
		OccurredAt: uc.now(),
	}
	if err := uc.events.Publish(ctx, e); err != nil {
		uc.log.Warn("failed to publish event", zap.String("event", name), zap.Error(err))
	}
}
