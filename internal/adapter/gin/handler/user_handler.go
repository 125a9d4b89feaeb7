package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recharge-service/internal/adapter/gin/middleware"
	"recharge-service/internal/usecase/user"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UpdateUserRequest represents the HTTP request body for updating a user
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// GetUser handles GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{Actor: middleware.ActorFrom(c), ID: id})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, toUserResponse(*u), "")
}

// UpdateUser handles PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	u, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		Actor: middleware.ActorFrom(c),
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  req.Role,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, toUserResponse(*u), "User updated")
}

// DeleteUser handles DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{Actor: middleware.ActorFrom(c), ID: id}); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id}, "User deleted")
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Query: c.Query("query"),
		Email: c.Query("email"),
		Role:  c.Query("role"),
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toUserResponse(u)
	}
	respondList(c, users, resp.Pagination)
}

// ListSessions handles GET /api/userSessions
func (h *UserHandler) ListSessions(c *gin.Context) {
	active := queryBool(c, "active")
	resp, err := h.uc.ListSessions(c.Request.Context(), user.ListSessionsRequest{
		UserID:     queryInt(c, "userId"),
		ActiveOnly: active != nil && *active,
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	sessions := make([]SessionResponse, len(resp.Sessions))
	for i := range resp.Sessions {
		sessions[i] = toSessionResponse(&resp.Sessions[i])
	}
	respondList(c, sessions, resp.Pagination)
}

// TouchSession handles POST /api/userSessions, the client heartbeat
func (h *UserHandler) TouchSession(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)
	var tokenID string
	if claims != nil {
		tokenID = claims.SessionID()
	}
	if err := h.uc.TouchSession(c.Request.Context(), tokenID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Session updated")
}
