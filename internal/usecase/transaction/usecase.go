package transaction

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domain "recharge-service/internal/domain/transaction"
	"recharge-service/internal/domain/user"
	"recharge-service/internal/usecase/validation"
	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	overviewDays    = 7
)

// Repository defines the interface for transaction queries.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Transaction, int64, error)
	Totals(ctx context.Context, f domain.Filter) (domain.Totals, error)
	OperatorStats(ctx context.Context, f domain.Filter) ([]domain.OperatorStat, error)
}

// Counter reports the size of a table.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Service implements transaction history and reporting.
type Service struct {
	repo     Repository
	users    Counter
	plans    Counter
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service.
func New(r Repository, users, plans Counter, log *zap.Logger) *Service {
	return &Service{
		repo:     r,
		users:    users,
		plans:    plans,
		log:      log,
		validate: validation.New(),
		now:      time.Now,
	}
}

// History lists the caller's transactions newest first. Admins may list any
// user's transactions, or all of them.
func (uc *Service) History(ctx context.Context, actor user.Actor, in ListRequest) (*ListResponse, error) {
	if err := validation.Struct(uc.validate, in); err != nil {
		return nil, err
	}
	if in.From != nil && in.To != nil && !in.To.After(*in.From) {
		return nil, apperrors.NewValidationError("to", "to must be after from")
	}
	if !actor.IsAdmin() {
		in.UserID = actor.UserID
	}
	in.Page, in.Limit = user.NormalizePage(in.Page, in.Limit, defaultPageSize, maxPageSize)

	items, total, err := uc.repo.List(ctx, domain.Filter{
		UserID: in.UserID,
		Type:   in.Type,
		Status: in.Status,
		From:   in.From,
		To:     in.To,
		Page:   in.Page,
		Limit:  in.Limit,
	})
	if err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to list transactions", zap.Int64("user_id", in.UserID), zap.Error(err))
		return nil, err
	}
	return &ListResponse{Transactions: items, Pagination: user.NewPagination(total, in.Page, in.Limit)}, nil
}

// Get returns one transaction. Users only see their own.
func (uc *Service) Get(ctx context.Context, actor user.Actor, id int64) (*domain.Transaction, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid transaction id")
	}
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(t.UserID) {
		return nil, apperrors.NewNotFoundError("transaction", "")
	}
	return t, nil
}

// Summary aggregates a user's transactions for the dashboard.
func (uc *Service) Summary(ctx context.Context, userID int64) (*Summary, error) {
	totals, err := uc.repo.Totals(ctx, domain.Filter{UserID: userID})
	if err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to summarize transactions", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &Summary{
		TotalSpent:          totals.RechargeSuccessAmount,
		TotalAdded:          totals.TopupSuccessAmount,
		SuccessfulRecharges: totals.RechargeSuccessCount,
		FailedRecharges:     totals.RechargeFailedCount,
		SuccessRate:         successRate(totals.RechargeSuccessCount, totals.RechargeFailedCount),
		TransactionCount:    totals.Count,
	}, nil
}

func successRate(ok, failed int64) float64 {
	if ok+failed == 0 {
		return 0
	}
	return math.Round(float64(ok)*1000/float64(ok+failed)) / 10
}

// Analytics describes the user's successful recharges.
func (uc *Service) Analytics(ctx context.Context, userID int64) (*Analytics, error) {
	txns, _, err := uc.repo.List(ctx, domain.Filter{
		UserID: userID,
		Type:   domain.TypeRecharge,
		Status: domain.StatusSuccess,
	})
	if err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to load recharges for analytics", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	stats, err := uc.repo.OperatorStats(ctx, domain.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}

	return analyze(txns, stats), nil
}

// analyze expects txns newest first, as List returns them.
func analyze(txns []domain.Transaction, stats []domain.OperatorStat) *Analytics {
	a := &Analytics{
		MostUsedOperator: "N/A",
		Monthly:          []MonthlySpend{},
		Operators:        stats,
	}
	if len(stats) > 0 {
		a.MostUsedOperator = stats[0].Operator
	}
	if len(txns) == 0 {
		return a
	}

	months := map[string]*MonthlySpend{}
	for _, t := range txns {
		a.TotalSpent += t.Amount
		if t.Amount > a.HighestRecharge {
			a.HighestRecharge = t.Amount
		}
		key := t.CreatedAt.UTC().Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &MonthlySpend{Month: key}
			months[key] = m
		}
		m.Amount += t.Amount
		m.Count++
	}
	a.TotalTransactions = int64(len(txns))
	a.AverageRecharge = int64(math.Round(float64(a.TotalSpent) / float64(len(txns))))

	if len(txns) > 1 {
		span := txns[0].CreatedAt.Sub(txns[len(txns)-1].CreatedAt).Abs()
		days := span.Hours() / 24 / float64(len(txns)-1)
		a.AverageInterval = int64(math.Round(days))
	}

	for _, m := range months {
		a.Monthly = append(a.Monthly, *m)
	}
	sort.Slice(a.Monthly, func(i, j int) bool { return a.Monthly[i].Month < a.Monthly[j].Month })
	return a
}

// startOfDay returns midnight UTC of the day containing t.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AdminOverview gathers the admin dashboard figures concurrently.
func (uc *Service) AdminOverview(ctx context.Context) (*Overview, error) {
	var (
		o      Overview
		all    domain.Totals
		today  domain.Totals
		recent []domain.Transaction
	)
	now := uc.now()
	todayStart := startOfDay(now)
	weekStart := todayStart.AddDate(0, 0, -(overviewDays - 1))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		o.TotalUsers, err = uc.users.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		o.TotalPlans, err = uc.plans.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = uc.repo.Totals(gctx, domain.Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		today, err = uc.repo.Totals(gctx, domain.Filter{From: &todayStart})
		return err
	})
	g.Go(func() error {
		var err error
		o.Operators, err = uc.repo.OperatorStats(gctx, domain.Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		recent, _, err = uc.repo.List(gctx, domain.Filter{Type: domain.TypeRecharge, From: &weekStart})
		return err
	})
	if err := g.Wait(); err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to build admin overview", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to build admin overview", err)
	}

	o.TotalTransactions = all.Count
	o.TotalRevenue = all.RechargeSuccessAmount
	o.TotalTopups = all.TopupSuccessAmount
	o.TodaySuccessful = today.RechargeSuccessCount
	o.TodayFailed = today.RechargeFailedCount
	o.TodayRevenue = today.RechargeSuccessAmount
	o.Last7Days = dailyCounts(recent, weekStart, overviewDays)
	return &o, nil
}

func dailyCounts(txns []domain.Transaction, from time.Time, days int) []DailyCount {
	out := make([]DailyCount, days)
	index := make(map[string]int, days)
	for i := range out {
		out[i].Date = from.AddDate(0, 0, i).Format(time.DateOnly)
		index[out[i].Date] = i
	}
	for _, t := range txns {
		i, ok := index[t.CreatedAt.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		switch t.Status {
		case domain.StatusSuccess:
			out[i].Successful++
			out[i].Amount += t.Amount
		case domain.StatusFailed:
			out[i].Failed++
		}
	}
	return out
}
