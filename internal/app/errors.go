package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"planner-service/internal/schedule"
	"planner-service/pkg/logger"
)

var ErrNotFound = errors.New("event not found")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrInvalidFormat),
		errors.Is(err, schedule.ErrOutOfRange),
		errors.Is(err, schedule.ErrCrossesMidnight),
		errors.Is(err, schedule.ErrInvalidWindow),
		errors.Is(err, schedule.ErrInvalidDuration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.Log.Error(c.Request.Context(), "request failed",
			logger.String("path", c.FullPath()), logger.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
