package user

import (
	"context"

	"recharge-service/pkg/auth"
)

// Usecase defines the interface for account, authentication and session operations.
type Usecase interface {
	Register(ctx context.Context, in RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, in LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	GetUser(ctx context.Context, in GetUserRequest) (*User, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) error

	TouchSession(ctx context.Context, tokenID string) error
	ListSessions(ctx context.Context, in ListSessionsRequest) (*ListSessionsResponse, error)
}
