package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// ErrorResponse defines the structure of an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error represents an API error
type Error struct {
	Message    string
	StatusCode int
	Code       string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Common API errors
var (
	ErrUnauthorized = &Error{Message: "Unauthorized", StatusCode: http.StatusUnauthorized, Code: "UNAUTHORIZED"}
	ErrForbidden    = &Error{Message: "Forbidden", StatusCode: http.StatusForbidden, Code: "FORBIDDEN"}
)

// NewValidationError creates a new validation error with a custom message
func NewValidationError(message string) *Error {
	return &Error{
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
	}
}

// respondError writes an error response, mapping domain errors to status codes
func respondError(c *gin.Context, err error) {
	var apiError *Error
	if errors.As(err, &apiError) {
		c.JSON(apiError.StatusCode, ErrorResponse{
			Message: apiError.Message,
			Code:    apiError.Code,
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrInvalidSubmission):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "VALIDATION_ERROR"})
	case errors.Is(err, repository.ErrAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "CONFLICT"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found", Code: "NOT_FOUND"})
	case errors.Is(err, repository.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Submission already reviewed", Code: "ALREADY_REVIEWED"})
	case errors.Is(err, repository.ErrCounterMissing):
		logrus.WithError(err).Error("Correlative counter is not seeded")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "Service unavailable", Code: "COUNTER_MISSING"})
	default:
		// Log unknown errors
		logrus.WithError(err).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Code:    "INTERNAL_ERROR",
		})
	}
}
