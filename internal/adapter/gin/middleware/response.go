package middleware

import (
	"github.com/gin-gonic/gin"
)

// errorBody mirrors the handler envelope for responses written by middleware.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Success: false, Error: code, Message: message})
}
