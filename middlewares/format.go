package middlewares

import (
	"MediCitas/models"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// HttpError logs an error and writes an HTTP error response to the client.
func HttpError(c *gin.Context, log *zap.Logger, message string, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Error(message, zap.Int("status", status), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}

// StatusFor maps a domain error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err with the status its kind maps to. Validation
// failures carry their per-field details.
func RespondError(c *gin.Context, log *zap.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		HttpError(c, log, "internal server error", status, err)
		return
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}
	HttpError(c, log, err.Error(), status, err)
}
