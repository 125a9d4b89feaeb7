package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "recharge-service/internal/domain/user"
	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

func toPagination(p *domain.Pagination) *Pagination {
	if p == nil {
		return nil
	}
	return &Pagination{Total: p.Total, Page: p.Page, Limit: p.Limit, TotalPages: p.TotalPages}
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func respondList(c *gin.Context, data any, p *domain.Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: toPagination(p)})
}

// respondError converts usecase errors to HTTP responses. Internal details
// are logged, never returned.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()

	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		status, message = http.StatusRequestEntityTooLarge, "request body too large"
		c.AbortWithStatusJSON(status, Envelope{Error: "validation_error", Message: message})
		return
	case status >= http.StatusInternalServerError:
		logger.WithContext(c.Request.Context(), log).Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		message = "An internal error occurred"
	}

	c.AbortWithStatusJSON(status, Envelope{Error: apperrors.Slug(err), Message: message})
}

// bindJSON decodes the body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, log *zap.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.WithContext(c.Request.Context(), log).Warn("invalid request body", zap.Error(err))
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			respondError(c, log, err)
			return false
		}
		respondError(c, log, apperrors.NewValidationError("body", "invalid request body: "+err.Error()))
		return false
	}
	return true
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Error: "invalid_id", Message: "ID must be a positive number"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int64 {
	n, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// queryRupees parses a rupee amount from the query string into paise.
func queryRupees(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, apperrors.NewValidationError(name, name+" must be a non-negative amount")
	}
	return rupeesToPaise(v), nil
}

func queryBool(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
