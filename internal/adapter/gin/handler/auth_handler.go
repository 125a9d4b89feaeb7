package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recharge-service/internal/adapter/gin/middleware"
	"recharge-service/internal/usecase/user"
	apperrors "recharge-service/pkg/errors"
)

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(uc user.Usecase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// RegisterRequest represents the HTTP request body for signing up
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// LoginRequest represents the HTTP request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the HTTP response for a successful login
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.uc.Register(c.Request.Context(), user.RegisterRequest{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, AuthResponse{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		User:      toUserResponse(resp.User),
	}, "Account created successfully")
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.uc.Login(c.Request.Context(), user.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, AuthResponse{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		User:      toUserResponse(resp.User),
	}, "Login successful")
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, h.log, apperrors.ErrUnauthorized)
		return
	}
	if err := h.uc.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Logged out")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	u, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{Actor: actor, ID: actor.UserID})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, toUserResponse(*u), "")
}
