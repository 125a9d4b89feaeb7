package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"recharge-service/internal/domain/plan"
	apperrors "recharge-service/pkg/errors"
)

func TestPlanRepoPG_CRUD(t *testing.T) {
	repo := NewPlanRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &plan.Plan{Name: "Unlimited Plan", Operator: "Airtel", Price: 29900, Data: "2GB/day", Validity: 28, Category: "unlimited", Popular: true})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Unlimited Plan", got.Name)
	assert.Equal(t, int64(29900), got.Price)
	assert.True(t, got.Popular)

	got.Price = 31900
	got.Popular = false
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(31900), got.Price)
	assert.False(t, got.Popular)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(repo.Delete(ctx, id)))
	assert.True(t, apperrors.IsNotFound(repo.Update(ctx, got)))
}

func TestPlanRepoPG_List(t *testing.T) {
	repo := NewPlanRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	require.NoError(t, repo.CreateBatch(ctx, plan.DefaultCatalog()))

	popular := true
	tests := []struct {
		name      string
		filter    plan.Filter
		wantTotal int64
		check     func(t *testing.T, plans []plan.Plan)
	}{
		{
			name:      "by operator is case insensitive",
			filter:    plan.Filter{Operator: "jio"},
			wantTotal: 4,
		},
		{
			name:      "by category",
			filter:    plan.Filter{Category: "data"},
			wantTotal: 2,
		},
		{
			name:      "price range",
			filter:    plan.Filter{MinPrice: 10000, MaxPrice: 20000},
			wantTotal: 4,
		},
		{
			name:      "popular only",
			filter:    plan.Filter{Popular: &popular},
			wantTotal: 3,
		},
		{
			name:      "search benefits",
			filter:    plan.Filter{Query: "hotstar"},
			wantTotal: 1,
			check: func(t *testing.T, plans []plan.Plan) {
				assert.Equal(t, "Max Plan", plans[0].Name)
			},
		},
		{
			name:      "sorted by price descending",
			filter:    plan.Filter{Operator: "Airtel", SortBy: "price", SortDesc: true},
			wantTotal: 4,
			check: func(t *testing.T, plans []plan.Plan) {
				for i := 1; i < len(plans); i++ {
					assert.GreaterOrEqual(t, plans[i-1].Price, plans[i].Price)
				}
			},
		},
		{
			name:      "paged",
			filter:    plan.Filter{Page: 2, Limit: 5},
			wantTotal: int64(len(plan.DefaultCatalog())),
			check: func(t *testing.T, plans []plan.Plan) {
				assert.Len(t, plans, 5)
			},
		},
		{
			name:      "unknown sort column falls back to id",
			filter:    plan.Filter{SortBy: "price; DROP TABLE plans", Limit: 1},
			wantTotal: int64(len(plan.DefaultCatalog())),
			check: func(t *testing.T, plans []plan.Plan) {
				assert.Equal(t, "Unlimited Plan", plans[0].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			if tt.check != nil {
				tt.check(t, plans)
			}
		})
	}
}

func TestPlanRepoPG_Distinct(t *testing.T) {
	repo := NewPlanRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	require.NoError(t, repo.CreateBatch(ctx, plan.DefaultCatalog()))

	ops, err := repo.Operators(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Airtel", "BSNL", "Jio", "Vi"}, ops)

	cats, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Contains(t, cats, "unlimited")
	assert.Contains(t, cats, "international")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(plan.DefaultCatalog())), n)
}

func TestPlanRepoPG_Popular(t *testing.T) {
	repo := NewPlanRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	require.NoError(t, repo.CreateBatch(ctx, plan.DefaultCatalog()))

	plans, err := repo.Popular(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "Smart Recharge", plans[0].Name)
}
