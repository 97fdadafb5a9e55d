package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huurnet/huurnet-BE/internal/notification"
)

var (
	ErrInternalServer         = errors.New("internal server error")
	ErrSessionIDMismatch      = errors.New("session does not belong to authenticated user")
	ErrSessionNotFound        = errors.New("session not found")
	ErrInsufficientPermission = errors.New("requires administrator role")
)

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

// notificationErrorStatus maps access layer errors to HTTP status codes.
// Unauthorized and NotFound are surfaced as-is and never retried;
// DeletionUnconfirmed is a distinct server-side failure so callers do not
// assume state changed.
func notificationErrorStatus(err error) int {
	switch {
	case errors.Is(err, notification.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, notification.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, notification.ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, notification.ErrDeletionUnconfirmed):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
