package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "recharge-service/internal/domain/plan"
	"recharge-service/internal/domain/user"
	"recharge-service/internal/usecase/validation"
	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/logger"
	"recharge-service/pkg/security"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Repository defines the interface for plan data access operations.
type Repository interface {
	Create(ctx context.Context, p *domain.Plan) (int64, error)
	CreateBatch(ctx context.Context, plans []domain.Plan) error
	Update(ctx context.Context, p *domain.Plan) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Plan, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Plan, int64, error)
	Popular(ctx context.Context) ([]domain.Plan, error)
	Count(ctx context.Context) (int64, error)
	Operators(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
}

// Service implements the business logic for the plan catalog.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validation.New()}
}

// ListPlans retrieves a filtered, sorted and paginated page of the catalog.
func (uc *Service) ListPlans(ctx context.Context, in ListPlansRequest) (*ListPlansResponse, error) {
	in.Page, in.Limit = user.NormalizePage(in.Page, in.Limit, defaultPageSize, maxPageSize)

	if err := validation.Struct(uc.validate, in); err != nil {
		return nil, err
	}
	if in.MaxPrice > 0 && in.MinPrice > in.MaxPrice {
		return nil, apperrors.NewValidationError("min_price", "min_price must not exceed max_price")
	}
	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		uc.log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, apperrors.NewValidationError("query", fmt.Sprintf("invalid search query: %v", err))
	}

	plans, total, err := uc.repo.List(ctx, domain.Filter{
		Query:    query,
		Operator: in.Operator,
		Category: in.Category,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Validity: in.Validity,
		Popular:  in.Popular,
		SortBy:   in.SortBy,
		SortDesc: strings.EqualFold(in.Order, "desc"),
		Page:     in.Page,
		Limit:    in.Limit,
	})
	if err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to list plans", zap.Error(err))
		return nil, err
	}

	return &ListPlansResponse{
		Plans:      plans,
		Pagination: user.NewPagination(total, in.Page, in.Limit),
	}, nil
}

// PopularPlans returns the plans highlighted on the home screen.
func (uc *Service) PopularPlans(ctx context.Context) ([]domain.Plan, error) {
	return uc.repo.Popular(ctx)
}

// GetPlan retrieves a plan by ID.
func (uc *Service) GetPlan(ctx context.Context, id int64) (*domain.Plan, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid plan id")
	}
	return uc.repo.GetByID(ctx, id)
}

// CreatePlan adds a plan to the catalog.
func (uc *Service) CreatePlan(ctx context.Context, in PlanInput) (*domain.Plan, error) {
	log := logger.WithContext(ctx, uc.log)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(uc.validate, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	p := &domain.Plan{}
	in.apply(p)
	id, err := uc.repo.Create(ctx, p)
	if err != nil {
		log.Error("failed to create plan", zap.Error(err))
		return nil, err
	}

	log.Info("plan created", zap.Int64("id", id), zap.String("operator", p.Operator))
	return uc.repo.GetByID(ctx, id)
}

// UpdatePlan replaces the editable fields of a plan.
func (uc *Service) UpdatePlan(ctx context.Context, id int64, in PlanInput) (*domain.Plan, error) {
	log := logger.WithContext(ctx, uc.log)
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid plan id")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(uc.validate, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	p := &domain.Plan{ID: id}
	in.apply(p)
	if err := uc.repo.Update(ctx, p); err != nil {
		log.Error("failed to update plan", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	log.Info("plan updated", zap.Int64("id", id))
	return uc.repo.GetByID(ctx, id)
}

// DeletePlan removes a plan from the catalog. Past transactions keep their
// operator, amount and description.
func (uc *Service) DeletePlan(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError("id", "invalid plan id")
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to delete plan", zap.Int64("id", id), zap.Error(err))
		return err
	}
	logger.WithContext(ctx, uc.log).Info("plan deleted", zap.Int64("id", id))
	return nil
}

// Operators lists the operators present in the catalog, or every supported
// operator when the catalog is empty.
func (uc *Service) Operators(ctx context.Context) ([]string, error) {
	ops, err := uc.repo.Operators(ctx)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return append([]string(nil), domain.Operators...), nil
	}
	return ops, nil
}

// Categories lists the categories present in the catalog, or every supported
// category when the catalog is empty.
func (uc *Service) Categories(ctx context.Context) ([]string, error) {
	cats, err := uc.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return append([]string(nil), domain.Categories...), nil
	}
	return cats, nil
}

// SeedDefaults inserts the default catalog when no plans exist and reports
// how many plans were added.
func (uc *Service) SeedDefaults(ctx context.Context) (int, error) {
	n, err := uc.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Debug("plan catalog already seeded", zap.Int64("count", n))
		return 0, nil
	}

	catalog := domain.DefaultCatalog()
	if err := uc.repo.CreateBatch(ctx, catalog); err != nil {
		return 0, err
	}
	uc.log.Info("seeded plan catalog", zap.Int("count", len(catalog)))
	return len(catalog), nil
}
