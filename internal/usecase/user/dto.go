package user

import (
	"time"

	"recharge-service/internal/domain/session"
	domain "recharge-service/internal/domain/user"
)

// RegisterRequest represents the request payload for signing up.
type RegisterRequest struct {
	Name      string `validate:"required,min=3,max=100"`
	Email     string `validate:"required,email,max=254"`
	Password  string `validate:"required,min=6,max=72"`
	Phone     string `validate:"omitempty,mobile"`
	IP        string
	UserAgent string
}

// LoginRequest represents the request payload for logging in.
type LoginRequest struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required"`
	IP        string
	UserAgent string
}

// AuthResponse carries an access token and the authenticated user.
type AuthResponse struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	Actor domain.Actor
	ID    int64
}

// UpdateUserRequest represents the request payload for updating a user.
// Empty fields are left unchanged.
type UpdateUserRequest struct {
	Actor domain.Actor
	ID    int64  `validate:"required"`
	Name  string `validate:"omitempty,min=3,max=100"`
	Email string `validate:"omitempty,email,max=254"`
	Phone string `validate:"omitempty,mobile"`
	Role  string `validate:"omitempty,oneof=user admin"`
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	Actor domain.Actor
	ID    int64
}

// ListUsersRequest represents the request payload for listing users.
// It supports pagination and search functionality.
type ListUsersRequest struct {
	Query string
	Email string
	Role  string `validate:"omitempty,oneof=user admin"`
	Page  int64
	Limit int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *domain.Pagination
}

// ListSessionsRequest represents the request payload for listing sessions.
type ListSessionsRequest struct {
	UserID     int64
	ActiveOnly bool
	Page       int64
	Limit      int64
}

// ListSessionsResponse represents the response payload for session listing.
type ListSessionsResponse struct {
	Sessions   []session.UserSession
	Pagination *domain.Pagination
}

// User represents a user DTO (Data Transfer Object) for API responses.
// It never carries the password hash.
type User struct {
	ID            int64
	Name          string
	Email         string
	Phone         string
	Role          string
	WalletBalance int64
	CreatedAt     time.Time
}

func toDTO(u *domain.User) User {
	return User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		WalletBalance: u.WalletBalance,
		CreatedAt:     u.CreatedAt,
	}
}
