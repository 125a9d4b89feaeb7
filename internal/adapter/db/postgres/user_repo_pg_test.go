package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"recharge-service/internal/domain/user"
	apperrors "recharge-service/pkg/errors"
)

func seedUsers(t *testing.T, repo *UserRepoPG, users ...user.User) []int64 {
	t.Helper()
	ids := make([]int64, len(users))
	for i := range users {
		id, err := repo.Create(context.Background(), &users[i])
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func TestUserRepoPG_CreateAndGet(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &user.User{Name: "Asha Rao", Email: "Asha@Example.com", PasswordHash: "hash", WalletBalance: 500000})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", got.Email)
	assert.Equal(t, user.RoleUser, got.Role)
	assert.Equal(t, int64(500000), got.WalletBalance)

	byEmail, err := repo.GetByEmail(ctx, "ASHA@example.COM")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, id, byEmail.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserRepoPG_Create_DuplicateEmail(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	seedUsers(t, repo, user.User{Name: "First", Email: "dup@example.com", PasswordHash: "x"})

	_, err := repo.Create(context.Background(), &user.User{Name: "Second", Email: "DUP@example.com", PasswordHash: "x"})
	require.Error(t, err)
	var exists *apperrors.AlreadyExistsError
	assert.True(t, errors.As(err, &exists))
}

func TestUserRepoPG_UpdateAndDelete(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	ids := seedUsers(t, repo, user.User{Name: "Old Name", Email: "u@example.com", PasswordHash: "x", WalletBalance: 100})

	u, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	u.Name = "New Name"
	u.Phone = "9876543210"
	u.Role = user.RoleAdmin
	u.WalletBalance = 999999 // ignored by Update
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "9876543210", got.Phone)
	assert.True(t, got.IsAdmin())
	assert.Equal(t, int64(100), got.WalletBalance)

	assert.True(t, apperrors.IsNotFound(repo.Update(ctx, &user.User{ID: 42, Name: "x", Email: "x@example.com"})))

	require.NoError(t, repo.Delete(ctx, ids[0]))
	assert.True(t, apperrors.IsNotFound(repo.Delete(ctx, ids[0])))
}

func TestUserRepoPG_List(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	seedUsers(t, repo,
		user.User{Name: "John Doe", Email: "JOHN@EXAMPLE.COM", PasswordHash: "x"},
		user.User{Name: "Jane_Test", Email: "jane_test@example.com", PasswordHash: "x"},
		user.User{Name: "Janet", Email: "janet@example.com", PasswordHash: "x"},
		user.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: user.RoleAdmin},
	)

	tests := []struct {
		name      string
		filter    user.Filter
		wantCount int
		wantTotal int64
	}{
		{name: "all", filter: user.Filter{Page: 1, Limit: 10}, wantCount: 4, wantTotal: 4},
		{name: "case insensitive", filter: user.Filter{Query: "john", Page: 1, Limit: 10}, wantCount: 1, wantTotal: 1},
		{name: "underscore is literal", filter: user.Filter{Query: "Jane_", Page: 1, Limit: 10}, wantCount: 1, wantTotal: 1},
		{name: "by role", filter: user.Filter{Role: user.RoleAdmin, Page: 1, Limit: 10}, wantCount: 1, wantTotal: 1},
		{name: "by email", filter: user.Filter{Email: "Janet@example.com", Page: 1, Limit: 10}, wantCount: 1, wantTotal: 1},
		{name: "second page", filter: user.Filter{Page: 2, Limit: 3}, wantCount: 1, wantTotal: 4},
		{name: "no match", filter: user.Filter{Query: "zzz", Page: 1, Limit: 10}, wantCount: 0, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, users, tt.wantCount)
			assert.Equal(t, tt.wantTotal, total)
		})
	}

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestUserRepoPG_DebitCredit(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	ids := seedUsers(t, repo, user.User{Name: "Payer", Email: "payer@example.com", PasswordHash: "x", WalletBalance: 29900})

	balance, err := repo.Debit(ctx, ids[0], 19900)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance)

	_, err = repo.Debit(ctx, ids[0], 10001)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	balance, err = repo.Credit(ctx, ids[0], 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), balance)

	_, err = repo.Debit(ctx, 404, 1)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.Credit(ctx, 404, 1)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.Debit(ctx, ids[0], 0)
	assert.Error(t, err)
}

func TestUserRepoPG_Debit_NeverOverdraws(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ids := seedUsers(t, repo, user.User{Name: "Racer", Email: "race@example.com", PasswordHash: "x", WalletBalance: 5000})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Debit(context.Background(), ids[0], 1000); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, success)
	got, err := repo.GetByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.WalletBalance)
}

func TestTxManager_WithinTx(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepoPG(db, zaptest.NewLogger(t))
	tm := NewTxManager(db)
	ctx := context.Background()
	ids := seedUsers(t, repo, user.User{Name: "Tx User", Email: "tx@example.com", PasswordHash: "x", WalletBalance: 1000})

	boom := errors.New("boom")
	err := tm.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Debit(ctx, ids[0], 600); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.WalletBalance, "rolled back")

	err = tm.WithinTx(ctx, func(ctx context.Context) error {
		// nested calls join the outer transaction
		return tm.WithinTx(ctx, func(ctx context.Context) error {
			_, err := repo.Debit(ctx, ids[0], 600)
			return err
		})
	})
	require.NoError(t, err)

	got, err = repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(400), got.WalletBalance)
}
