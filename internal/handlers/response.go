package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error       string          `json:"error"`
	Message     string          `json:"message"`
	Code        string          `json:"code,omitempty"`
	Field       string          `json:"field,omitempty"`
	RedirectURL string          `json:"redirect_url,omitempty"`
	Notices     []models.Notice `json:"notices,omitempty"`
}

// SuccessResponse represents a plain success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// respondError maps a service error to its HTTP status. Database messages
// from remote procedures are passed through so the user sees them as raised.
func respondError(c *gin.Context, logger *logrus.Logger, err error, loginURL string) {
	var validation *services.ValidationError
	var remote *services.RemoteError
	var rateLimit *services.RateLimitError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validation.Message,
			Field:   validation.Field,
			Notices: []models.Notice{{Level: models.NoticeError, Message: validation.Message}},
		})

	case errors.Is(err, services.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:       "auth_required",
			Message:     err.Error(),
			Code:        "LOGIN_REQUIRED",
			RedirectURL: loginURL,
			Notices:     []models.Notice{{Level: models.NoticeInfo, Message: "Please log in to complete your booking"}},
		})

	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: err.Error()})

	case errors.Is(err, services.ErrAccountInactive), errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: err.Error()})

	case errors.Is(err, services.ErrSeatUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "seat_unavailable",
			Message: "Seat is no longer available",
			Notices: []models.Notice{{Level: models.NoticeError, Message: "Seat is no longer available"}},
		})

	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrRouteNotFound),
		errors.Is(err, services.ErrReceiptNotFound),
		errors.Is(err, database.ErrFleetNotFound),
		errors.Is(err, database.ErrAdminNotFound),
		errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrSettingNotFound),
		errors.Is(err, database.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})

	case errors.Is(err, services.ErrNoAssignment), errors.Is(err, services.ErrMalformedFleetName):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_bus_available",
			Message: err.Error(),
			Notices: []models.Notice{{Level: models.NoticeError, Message: err.Error()}},
		})

	case errors.As(err, &rateLimit):
		c.Header("Retry-After", rateLimit.RetryAfter.UTC().Format(http.TimeFormat))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate_limit_exceeded",
			"message":     rateLimit.Message,
			"retry_after": rateLimit.RetryAfter,
			"limit_type":  rateLimit.Type,
		})

	case errors.As(err, &remote):
		logger.WithFields(logrus.Fields{
			"procedure": remote.Procedure,
			"path":      c.Request.URL.Path,
		}).WithError(remote.Err).Warn("Remote procedure failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "remote_error",
			Message: remote.Error(),
			Notices: []models.Notice{{Level: models.NoticeError, Message: remote.Error()}},
		})

	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong. Please try again.",
		})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
}
