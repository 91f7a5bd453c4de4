package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the JSON shape every endpoint responds with.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      interface{} `json:"error,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// Success writes a success envelope with optional message, data and pagination.
func Success(c *gin.Context, status int, data interface{}, message string, pagination interface{}) {
	c.JSON(status, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message, nil)
}

// Error writes an error envelope.
func Error(c *gin.Context, status int, message string, err interface{}) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   err,
	})
}

// ErrorWithLog writes an error envelope and records the underlying error.
func ErrorWithLog(logger *slog.Logger, c *gin.Context, status int, message string, err error) {
	if logger != nil && err != nil {
		logger.ErrorContext(c.Request.Context(), message,
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	Error(c, status, message, err)
}
