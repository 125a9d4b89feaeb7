package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "recharge-service/internal/domain/notification"
	"recharge-service/internal/domain/user"
	apperrors "recharge-service/pkg/errors"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, page, limit int64) ([]domain.Notification, int64, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, page, limit)
	if args.Get(0) == nil {
		return nil, 0, 0, args.Error(3)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Get(2).(int64), args.Error(3)
}

func (m *MockRepository) MarkRead(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockUserLookup is a mock implementation of UserLookup
type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func setupTestUsecase(t *testing.T) (*Service, *MockRepository, *MockUserLookup) {
	repo := new(MockRepository)
	users := new(MockUserLookup)
	return New(repo, users, zaptest.NewLogger(t)), repo, users
}

func TestUsecase_List(t *testing.T) {
	uc, repo, _ := setupTestUsecase(t)
	ctx := context.Background()
	repo.On("ListByUser", ctx, int64(3), true, int64(1), int64(20)).
		Return([]domain.Notification{{ID: 1}}, int64(1), int64(4), nil)

	resp, err := uc.List(ctx, ListRequest{UserID: 3, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 1)
	assert.Equal(t, int64(4), resp.UnreadCount)
	assert.Equal(t, int64(1), resp.Pagination.TotalPages)
}

func TestUsecase_MarkRead(t *testing.T) {
	me := user.Actor{UserID: 3}
	uc, repo, _ := setupTestUsecase(t)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(1)).Return(&domain.Notification{ID: 1, UserID: 3}, nil)
	repo.On("GetByID", ctx, int64(2)).Return(&domain.Notification{ID: 2, UserID: 9}, nil)
	repo.On("GetByID", ctx, int64(3)).Return(&domain.Notification{ID: 3, UserID: 3, Read: true}, nil)
	repo.On("MarkRead", ctx, int64(1)).Return(nil)

	require.NoError(t, uc.MarkRead(ctx, me, 1))
	assert.True(t, apperrors.IsNotFound(uc.MarkRead(ctx, me, 2)), "other user's notification")
	require.NoError(t, uc.MarkRead(ctx, me, 3))
	repo.AssertNumberOfCalls(t, "MarkRead", 1)
	assert.Error(t, uc.MarkRead(ctx, me, 0))
}

func TestUsecase_MarkAllReadAndDelete(t *testing.T) {
	me := user.Actor{UserID: 3}
	uc, repo, _ := setupTestUsecase(t)
	ctx := context.Background()

	repo.On("MarkAllRead", ctx, int64(3)).Return(int64(5), nil)
	n, err := uc.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	repo.On("GetByID", ctx, int64(1)).Return(&domain.Notification{ID: 1, UserID: 3}, nil)
	repo.On("Delete", ctx, int64(1)).Return(nil)
	require.NoError(t, uc.Delete(ctx, me, 1))
}

func TestUsecase_Send(t *testing.T) {
	t.Run("success defaults type", func(t *testing.T) {
		uc, repo, users := setupTestUsecase(t)
		ctx := context.Background()
		users.On("GetByID", ctx, int64(3)).Return(&user.User{ID: 3}, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == 3 && n.Type == domain.TypeInfo && n.Title == "Maintenance"
		})).Return(nil)

		n, err := uc.Send(ctx, SendRequest{UserID: 3, Title: " Maintenance ", Message: "Tonight 2am"})
		require.NoError(t, err)
		assert.Equal(t, domain.TypeInfo, n.Type)
	})

	t.Run("unknown user", func(t *testing.T) {
		uc, repo, users := setupTestUsecase(t)
		ctx := context.Background()
		users.On("GetByID", ctx, int64(8)).Return(nil, apperrors.NewNotFoundError("user", ""))

		_, err := uc.Send(ctx, SendRequest{UserID: 8, Title: "Hi", Message: "there"})
		assert.True(t, apperrors.IsNotFound(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("validation", func(t *testing.T) {
		uc, _, _ := setupTestUsecase(t)
		_, err := uc.Send(context.Background(), SendRequest{UserID: 3, Title: "Hi", Message: "x", Type: "urgent"})
		assert.Equal(t, "validation_error", apperrors.Slug(err))
	})
}

func TestUsecase_Notify_SwallowsErrors(t *testing.T) {
	uc, repo, _ := setupTestUsecase(t)
	ctx := context.Background()
	repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	uc.Notify(ctx, 3, domain.TypeSuccess, "Recharge Successful", "done")
	repo.AssertExpectations(t)
}

func TestService_ImplementsUsecase(t *testing.T) {
	assert.Implements(t, (*Usecase)(nil), new(Service))
}
