package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"recharge-service/internal/adapter/cache"
	domain "recharge-service/internal/domain/plan"
	"recharge-service/internal/usecase/plan"
)

const popularFlightKey = "plans:popular"

// CachedPlanRepository implements plan.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation; reads
// that are not cached go straight to the embedded DB repository.
type CachedPlanRepository struct {
	plan.Repository
	cache cache.PlanCache
	log   *zap.Logger
	group singleflight.Group
}

// NewCachedPlanRepository creates a new instance of CachedPlanRepository.
// A nil cache disables caching.
func NewCachedPlanRepository(dbRepo plan.Repository, c cache.PlanCache, log *zap.Logger) *CachedPlanRepository {
	return &CachedPlanRepository{
		Repository: dbRepo,
		cache:      c,
		log:        log,
	}
}

// GetByID retrieves a plan by ID using Cache-Aside pattern.
func (r *CachedPlanRepository) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	if r.cache != nil {
		cachedPlan, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cachedPlan != nil {
			return cachedPlan, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	result, err, _ := r.group.Do(fmt.Sprintf("plan:%d", id), func() (any, error) {
		// Double-check cache in case another request populated it while we were waiting
		if r.cache != nil {
			if cachedPlan, err := r.cache.Get(ctx, id); err == nil && cachedPlan != nil {
				return cachedPlan, nil
			}
		}

		p, err := r.Repository.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, p); err != nil {
				r.log.Warn("failed to cache plan", zap.Int64("id", id), zap.Error(err))
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	// callers may modify the plan; hand each one its own copy
	p := *result.(*domain.Plan)
	return &p, nil
}

// Popular retrieves the popular plans using Cache-Aside pattern.
func (r *CachedPlanRepository) Popular(ctx context.Context) ([]domain.Plan, error) {
	if r.cache != nil {
		plans, err := r.cache.GetPopular(ctx)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("key", popularFlightKey), zap.Error(err))
		} else if plans != nil {
			return plans, nil
		}
	}

	result, err, _ := r.group.Do(popularFlightKey, func() (any, error) {
		plans, err := r.Repository.Popular(ctx)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			if err := r.cache.SetPopular(ctx, plans); err != nil {
				r.log.Warn("failed to cache popular plans", zap.Error(err))
			}
		}
		return plans, nil
	})
	if err != nil {
		return nil, err
	}

	return append([]domain.Plan(nil), result.([]domain.Plan)...), nil
}

// Create inserts the plan and drops the cached popular list.
func (r *CachedPlanRepository) Create(ctx context.Context, p *domain.Plan) (int64, error) {
	id, err := r.Repository.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx)
	return id, nil
}

// CreateBatch inserts the plans and drops the cached popular list.
func (r *CachedPlanRepository) CreateBatch(ctx context.Context, plans []domain.Plan) error {
	if err := r.Repository.CreateBatch(ctx, plans); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Update updates the plan in DB and invalidates the cache.
func (r *CachedPlanRepository) Update(ctx context.Context, p *domain.Plan) error {
	if err := r.Repository.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.ID)
	return nil
}

// Delete deletes the plan from DB and invalidates the cache.
func (r *CachedPlanRepository) Delete(ctx context.Context, id int64) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedPlanRepository) invalidate(ctx context.Context, ids ...int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, ids...); err != nil {
		r.log.Warn("failed to invalidate plan cache", zap.Int64s("ids", ids), zap.Error(err))
	}
}
