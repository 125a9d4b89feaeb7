package plan

import (
	"context"

	domain "recharge-service/internal/domain/plan"
)

// Usecase defines the interface for plan catalog operations.
type Usecase interface {
	ListPlans(ctx context.Context, in ListPlansRequest) (*ListPlansResponse, error)
	PopularPlans(ctx context.Context) ([]domain.Plan, error)
	GetPlan(ctx context.Context, id int64) (*domain.Plan, error)
	CreatePlan(ctx context.Context, in PlanInput) (*domain.Plan, error)
	UpdatePlan(ctx context.Context, id int64, in PlanInput) (*domain.Plan, error)
	DeletePlan(ctx context.Context, id int64) error
	Operators(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
}
