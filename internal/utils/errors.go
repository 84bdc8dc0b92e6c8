package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/idara-sms/schoolbooks-api/internal/models"
)

type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewBadRequestError(message string, details any) *APIError {
	return &APIError{
		StatusCode: fiber.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		Details:    details,
	}
}

func NewValidationError(message string, details any) *APIError {
	return &APIError{
		StatusCode: fiber.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    message,
		Details:    details,
	}
}

func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

func NewNotFoundError(resource string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
	}
}

func NewSourceUnavailableError(source string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusServiceUnavailable,
		Code:       "SOURCE_UNAVAILABLE",
		Message:    fmt.Sprintf("data source %s is unavailable", source),
	}
}

func NewInternalError(err error) *APIError {
	return &APIError{
		StatusCode: fiber.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    "An internal error occurred",
		Details:    err.Error(), // Only in development
	}
}

// FromError maps domain errors to their API shape. Unknown errors come back
// as internal errors.
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return NewValidationError(validationErr.Message, fiber.Map{"field": validationErr.Field})
	}

	var sourceErr *models.SourceUnavailableError
	if errors.As(err, &sourceErr) {
		return NewSourceUnavailableError(sourceErr.Source)
	}

	if errors.Is(err, models.ErrNotFound) {
		return NewNotFoundError("record")
	}

	return NewInternalError(err)
}

// ErrorHandler is a middleware to handle APIError
func ErrorHandler(c fiber.Ctx, err error) error {
	apiErr := FromError(err)
	return c.Status(apiErr.StatusCode).JSON(apiErr)
}
