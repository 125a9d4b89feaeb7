package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"recharge-service/internal/adapter/gin/middleware"
	domain "recharge-service/internal/domain/user"
	usecase "recharge-service/internal/usecase/user"
	"recharge-service/pkg/auth"
	pkgerrors "recharge-service/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) Register(ctx context.Context, req usecase.RegisterRequest) (*usecase.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResponse), args.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*usecase.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResponse), args.Error(1)
}

func (m *MockUserUsecase) Logout(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *MockUserUsecase) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context, req usecase.ListUsersRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, req usecase.UpdateUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, req usecase.DeleteUserRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockUserUsecase) TouchSession(ctx context.Context, tokenID string) error {
	return m.Called(ctx, tokenID).Error(0)
}

func (m *MockUserUsecase) ListSessions(ctx context.Context, req usecase.ListSessionsRequest) (*usecase.ListSessionsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListSessionsResponse), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

// as authenticates every request on r as the given user.
func as(r *gin.Engine, userID int64, role string) {
	r.Use(func(c *gin.Context) {
		middleware.SetClaims(c, &auth.Claims{
			UserID:           userID,
			Role:             role,
			RegisteredClaims: jwt.RegisteredClaims{ID: "session-1"},
		})
		c.Next()
	})
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) Envelope {
	t.Helper()
	env := Envelope{Data: data}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func setupUserTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	mockUsecase := new(MockUserUsecase)
	return gin.New(), mockUsecase
}

var sampleUser = usecase.User{
	ID:            3,
	Name:          "Asha Rao",
	Email:         "asha@example.com",
	Role:          domain.RoleUser,
	WalletBalance: 500000,
	CreatedAt:     time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC),
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, uc := setupUserTest(t)
		h := NewAuthHandler(uc, zaptest.NewLogger(t))
		r.POST("/register", h.Register)

		uc.On("Register", mock.Anything, mock.MatchedBy(func(req usecase.RegisterRequest) bool {
			return req.Email == "asha@example.com" && req.Password == "secret1" && req.IP != ""
		})).Return(&usecase.AuthResponse{Token: "tok", User: sampleUser}, nil)

		w := doJSON(r, http.MethodPost, "/register", RegisterRequest{Name: "Asha Rao", Email: "asha@example.com", Password: "secret1"})
		assert.Equal(t, http.StatusCreated, w.Code)

		var data AuthResponse
		env := decode(t, w, &data)
		assert.True(t, env.Success)
		assert.Equal(t, "tok", data.Token)
		assert.Equal(t, 5000.0, data.User.WalletBalance)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		r, uc := setupUserTest(t)
		h := NewAuthHandler(uc, zaptest.NewLogger(t))
		r.POST("/register", h.Register)
		uc.On("Register", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewAlreadyExistsError("user", "email already exists"))

		w := doJSON(r, http.MethodPost, "/register", RegisterRequest{Name: "Asha Rao", Email: "asha@example.com", Password: "secret1"})
		assert.Equal(t, http.StatusConflict, w.Code)
		env := decode(t, w, nil)
		assert.False(t, env.Success)
		assert.Equal(t, "already_exists", env.Error)
		assert.Equal(t, "email already exists", env.Message)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, uc := setupUserTest(t)
		h := NewAuthHandler(uc, zaptest.NewLogger(t))
		r.POST("/register", h.Register)

		w := doJSON(r, http.MethodPost, "/register", "invalid json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decode(t, w, nil).Error)
		uc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	r, uc := setupUserTest(t)
	h := NewAuthHandler(uc, zaptest.NewLogger(t))
	r.POST("/login", h.Login)

	uc.On("Login", mock.Anything, mock.MatchedBy(func(req usecase.LoginRequest) bool { return req.Password == "good" })).
		Return(&usecase.AuthResponse{Token: "tok", User: sampleUser}, nil)
	uc.On("Login", mock.Anything, mock.Anything).Return(nil, pkgerrors.NewUnauthenticatedError("invalid email or password"))

	w := doJSON(r, http.MethodPost, "/login", LoginRequest{Email: "asha@example.com", Password: "good"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/login", LoginRequest{Email: "asha@example.com", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decode(t, w, nil).Error)
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	r, uc := setupUserTest(t)
	as(r, 3, domain.RoleUser)
	h := NewAuthHandler(uc, zaptest.NewLogger(t))
	r.POST("/logout", h.Logout)
	r.GET("/me", h.Me)

	uc.On("Logout", mock.Anything, mock.MatchedBy(func(c *auth.Claims) bool { return c.SessionID() == "session-1" })).Return(nil)
	uc.On("GetUser", mock.Anything, usecase.GetUserRequest{Actor: domain.Actor{UserID: 3, Role: domain.RoleUser}, ID: 3}).
		Return(&sampleUser, nil)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/logout", nil).Code)

	w := doJSON(r, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me UserResponse
	decode(t, w, &me)
	assert.Equal(t, "asha@example.com", me.Email)
	uc.AssertExpectations(t)
}

func TestUserHandler_GetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, uc := setupUserTest(t)
		as(r, 3, domain.RoleUser)
		h := NewUserHandler(uc, zaptest.NewLogger(t))
		r.GET("/users/:id", h.GetUser)
		uc.On("GetUser", mock.Anything, mock.MatchedBy(func(req usecase.GetUserRequest) bool { return req.ID == 3 })).
			Return(&sampleUser, nil)

		w := doJSON(r, http.MethodGet, "/users/3", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, uc := setupUserTest(t)
		h := NewUserHandler(uc, zaptest.NewLogger(t))
		r.GET("/users/:id", h.GetUser)

		w := doJSON(r, http.MethodGet, "/users/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_id", decode(t, w, nil).Error)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, uc := setupUserTest(t)
		h := NewUserHandler(uc, zaptest.NewLogger(t))
		r.GET("/users/:id", h.GetUser)
		uc.On("GetUser", mock.Anything, mock.Anything).Return(nil, pkgerrors.NewNotFoundError("user", ""))

		w := doJSON(r, http.MethodGet, "/users/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decode(t, w, nil).Error)
	})

	t.Run("Internal Error Hides Details", func(t *testing.T) {
		r, uc := setupUserTest(t)
		h := NewUserHandler(uc, zaptest.NewLogger(t))
		r.GET("/users/:id", h.GetUser)
		uc.On("GetUser", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection refused"))

		w := doJSON(r, http.MethodGet, "/users/1", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestUserHandler_UpdateUser(t *testing.T) {
	r, uc := setupUserTest(t)
	as(r, 3, domain.RoleUser)
	h := NewUserHandler(uc, zaptest.NewLogger(t))
	r.PUT("/users/:id", h.UpdateUser)

	updated := sampleUser
	updated.Name = "Asha R"
	uc.On("UpdateUser", mock.Anything, usecase.UpdateUserRequest{
		Actor: domain.Actor{UserID: 3, Role: domain.RoleUser},
		ID:    3,
		Name:  "Asha R",
	}).Return(&updated, nil)
	uc.On("UpdateUser", mock.Anything, mock.MatchedBy(func(req usecase.UpdateUserRequest) bool { return req.Role == "admin" })).
		Return(nil, pkgerrors.NewPermissionDeniedError("only admins can change roles"))

	w := doJSON(r, http.MethodPut, "/users/3", UpdateUserRequest{Name: "Asha R"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPut, "/users/3", UpdateUserRequest{Role: "admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w, nil).Error)
}

func TestUserHandler_DeleteUser(t *testing.T) {
	r, uc := setupUserTest(t)
	as(r, 1, domain.RoleAdmin)
	h := NewUserHandler(uc, zaptest.NewLogger(t))
	r.DELETE("/users/:id", h.DeleteUser)
	uc.On("DeleteUser", mock.Anything, mock.MatchedBy(func(req usecase.DeleteUserRequest) bool { return req.ID == 3 })).Return(nil)

	w := doJSON(r, http.MethodDelete, "/users/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestUserHandler_ListUsers(t *testing.T) {
	r, uc := setupUserTest(t)
	h := NewUserHandler(uc, zaptest.NewLogger(t))
	r.GET("/users", h.ListUsers)

	uc.On("ListUsers", mock.Anything, usecase.ListUsersRequest{Query: "asha", Page: 2, Limit: 5}).
		Return(&usecase.ListUsersResponse{
			Users:      []usecase.User{sampleUser},
			Pagination: domain.NewPagination(6, 2, 5),
		}, nil)

	w := doJSON(r, http.MethodGet, "/users?query=asha&page=2&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []UserResponse
	env := decode(t, w, &users)
	require.Len(t, users, 1)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(2), env.Pagination.TotalPages)
}

func TestUserHandler_Sessions(t *testing.T) {
	r, uc := setupUserTest(t)
	as(r, 3, domain.RoleUser)
	h := NewUserHandler(uc, zaptest.NewLogger(t))
	r.POST("/userSessions", h.TouchSession)
	r.GET("/userSessions", h.ListSessions)

	uc.On("TouchSession", mock.Anything, "session-1").Return(nil)
	uc.On("ListSessions", mock.Anything, usecase.ListSessionsRequest{UserID: 3, ActiveOnly: true}).
		Return(&usecase.ListSessionsResponse{Pagination: domain.NewPagination(0, 1, 20)}, nil)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/userSessions", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/userSessions?userId=3&active=true", nil).Code)
	uc.AssertExpectations(t)
}
