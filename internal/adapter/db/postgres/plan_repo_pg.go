package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recharge-service/internal/domain/plan"
	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/security"
)

// planSortColumns whitelists the columns a listing can be ordered by.
var planSortColumns = map[string]string{
	"price":    "price",
	"validity": "validity",
	"name":     "name",
}

// PlanRepoPG implements the plan Repository interface using PostgreSQL and GORM.
type PlanRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewPlanRepoPG creates a new instance of PlanRepoPG.
func NewPlanRepoPG(db *gorm.DB, log *zap.Logger) *PlanRepoPG {
	return &PlanRepoPG{db: db, log: log}
}

func toPlan(m *PlanSchema) *plan.Plan {
	return &plan.Plan{
		ID:        m.ID,
		Name:      m.Name,
		Operator:  m.Operator,
		Price:     m.Price,
		Data:      m.Data,
		Validity:  m.Validity,
		Category:  m.Category,
		Benefits:  m.Benefits,
		Popular:   m.Popular,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromPlan(p *plan.Plan) PlanSchema {
	return PlanSchema{
		ID:       p.ID,
		Name:     p.Name,
		Operator: p.Operator,
		Price:    p.Price,
		Data:     p.Data,
		Validity: p.Validity,
		Category: p.Category,
		Benefits: p.Benefits,
		Popular:  p.Popular,
	}
}

// Create inserts a new plan.
func (r *PlanRepoPG) Create(ctx context.Context, p *plan.Plan) (int64, error) {
	if p == nil {
		return 0, errors.New("plan cannot be nil")
	}

	model := fromPlan(p)
	model.ID = 0
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		r.log.Error("failed to create plan in db", zap.Error(err), zap.String("name", p.Name))
		return 0, fmt.Errorf("failed to create plan: %w", err)
	}

	r.log.Info("plan created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// CreateBatch inserts several plans in one statement.
func (r *PlanRepoPG) CreateBatch(ctx context.Context, plans []plan.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	models := make([]PlanSchema, len(plans))
	for i := range plans {
		models[i] = fromPlan(&plans[i])
		models[i].ID = 0
	}
	if err := conn(ctx, r.db).Create(&models).Error; err != nil {
		r.log.Error("failed to insert plans", zap.Error(err), zap.Int("count", len(plans)))
		return fmt.Errorf("failed to insert plans: %w", err)
	}
	return nil
}

// Update overwrites every editable field of an existing plan.
func (r *PlanRepoPG) Update(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return errors.New("plan cannot be nil")
	}

	res := conn(ctx, r.db).Model(&PlanSchema{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":     p.Name,
		"operator": p.Operator,
		"price":    p.Price,
		"data":     p.Data,
		"validity": p.Validity,
		"category": p.Category,
		"benefits": p.Benefits,
		"popular":  p.Popular,
	})
	if res.Error != nil {
		r.log.Error("failed to update plan in db", zap.Error(res.Error), zap.Int64("id", p.ID))
		return fmt.Errorf("failed to update plan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("plan", fmt.Sprintf("plan not found: id=%d", p.ID))
	}

	r.log.Info("plan updated in db", zap.Int64("id", p.ID))
	return nil
}

// Delete removes a plan by ID.
func (r *PlanRepoPG) Delete(ctx context.Context, id int64) error {
	res := conn(ctx, r.db).Delete(&PlanSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete plan in db", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to delete plan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("plan", fmt.Sprintf("plan not found: id=%d", id))
	}

	r.log.Info("plan deleted in db", zap.Int64("id", id))
	return nil
}

// GetByID retrieves a plan by ID.
func (r *PlanRepoPG) GetByID(ctx context.Context, id int64) (*plan.Plan, error) {
	var model PlanSchema
	if err := conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("plan", fmt.Sprintf("plan not found: id=%d", id))
		}
		r.log.Error("failed to get plan from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return toPlan(&model), nil
}

// List retrieves plans matching the filter and the total number of matches.
// f.Query must already be validated with security.ValidateSearchQuery.
func (r *PlanRepoPG) List(ctx context.Context, f plan.Filter) ([]plan.Plan, int64, error) {
	q := conn(ctx, r.db).Model(&PlanSchema{})
	if f.Query != "" {
		pattern := likePattern(strings.ToLower(security.SanitizeSearchString(f.Query)))
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(benefits) LIKE ? ESCAPE '\\' OR LOWER(data) LIKE ? ESCAPE '\\')", pattern, pattern, pattern)
	}
	if f.Operator != "" {
		q = q.Where("LOWER(operator) = ?", strings.ToLower(f.Operator))
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice > 0 {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if f.Validity > 0 {
		q = q.Where("validity = ?", f.Validity)
	}
	if f.Popular != nil {
		q = q.Where("popular = ?", *f.Popular)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.log.Error("failed to count plans", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	order := "id ASC"
	if col, ok := planSortColumns[f.SortBy]; ok {
		dir := "ASC"
		if f.SortDesc {
			dir = "DESC"
		}
		order = col + " " + dir + ", id ASC"
	}

	q = q.Order(order)
	if f.Limit > 0 {
		q = q.Offset(offset(f.Page, f.Limit)).Limit(int(f.Limit))
	}

	var models []PlanSchema
	if err := q.Find(&models).Error; err != nil {
		r.log.Error("failed to list plans from db", zap.Error(err), zap.String("query", f.Query))
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]plan.Plan, len(models))
	for i := range models {
		plans[i] = *toPlan(&models[i])
	}
	return plans, total, nil
}

// Count returns the number of plans in the catalog.
func (r *PlanRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&PlanSchema{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count plans: %w", err)
	}
	return n, nil
}

// Operators returns the distinct operators that have at least one plan.
func (r *PlanRepoPG) Operators(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "operator")
}

// Categories returns the distinct categories that have at least one plan.
func (r *PlanRepoPG) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *PlanRepoPG) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	if err := conn(ctx, r.db).Model(&PlanSchema{}).Distinct().Order(column).Pluck(column, &values).Error; err != nil {
		r.log.Error("failed to list distinct plan values", zap.String("column", column), zap.Error(err))
		return nil, fmt.Errorf("failed to list plan %s values: %w", column, err)
	}
	return values, nil
}

// Popular returns the plans flagged popular, cheapest first.
func (r *PlanRepoPG) Popular(ctx context.Context) ([]plan.Plan, error) {
	popular := true
	plans, _, err := r.List(ctx, plan.Filter{Popular: &popular, SortBy: "price"})
	return plans, err
}
