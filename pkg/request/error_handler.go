package request

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/pkg/apperrors"
	"github.com/jobhive/jobhive-server-go/pkg/response"
)

// Handler turns errors attached to the gin context into a standard error
// response. Handlers that already wrote a response should not attach errors.
func Handler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		var collected []error
		for _, ginErr := range c.Errors {
			if ginErr != nil && ginErr.Err != nil {
				collected = append(collected, ginErr.Err)
			}
		}
		if len(collected) == 0 {
			return
		}
		err := errors.Join(collected...)

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			response.ErrorWithLog(logger, c, appErr.StatusCode(), appErr.Message(), err)
			return
		}

		status, message := classify(err)
		response.ErrorWithLog(logger, c, status, message, err)
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "Resource already exists"
	case strings.Contains(err.Error(), "invalid input syntax for type uuid"):
		return http.StatusBadRequest, "Invalid ID format"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
