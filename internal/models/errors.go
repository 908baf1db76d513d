package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// NewSubmissionError wraps a store rejection of a suggestion create. The
// caller must resubmit with corrected data; nothing is retried internally.
func NewSubmissionError(err error) *AppError {
	return &AppError{
		Code:    "SUBMISSION_ERROR",
		Message: "Suggestion was rejected by the store",
		Err:     err,
	}
}

// ErrAlreadyPublished guards against duplicate publishes. It fails fast,
// before any network call is made.
var ErrAlreadyPublished = &AppError{
	Code:    "ALREADY_PUBLISHED",
	Message: "Suggestion has already been sent to the external system",
}

// ErrConfigurationMissing indicates the tenant configuration record is absent.
// The publish attempt failed before any external call, so a retry is safe.
var ErrConfigurationMissing = &AppError{
	Code:    "CONFIGURATION_MISSING",
	Message: "External publish configuration is missing",
}

// NewPublishedNotMarkedError reports the publish failure window: the external
// system accepted the suggestion but the local flag write failed. The external
// id is embedded so operators can reconcile manually.
func NewPublishedNotMarkedError(externalID string, err error) *AppError {
	return &AppError{
		Code:    "PUBLISHED_NOT_MARKED",
		Message: fmt.Sprintf("Suggestion was published externally (id %s) but could not be marked locally", externalID),
		Err:     err,
	}
}

// respondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
