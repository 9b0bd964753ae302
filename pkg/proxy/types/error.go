package types

import (
	"net/http"
	"time"
)

// Error types that are not client error kinds.
const (
	// ErrorTypeServerError is used for failures that carry no classification.
	ErrorTypeServerError = "server_error"

	// ErrorTypeNotFound is used for unknown routes.
	ErrorTypeNotFound = "not_found"

	// ErrorTypeMethodNotAllowed is used when a route exists for another method.
	ErrorTypeMethodNotAllowed = "method_not_allowed"

	// ErrorTypeRequestTooLarge is used when the body exceeds the configured limit.
	ErrorTypeRequestTooLarge = "request_too_large"
)

// ErrorResponse is the error envelope written for every failure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`

	// HTTPStatus is the status the envelope is written with.
	HTTPStatus int `json:"-"`

	// RetryAfter is echoed as a Retry-After header when positive.
	RetryAfter time.Duration `json:"-"`
}

// ErrorDetail carries the failure classification.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`

	// Status is the upstream HTTP status, when the failure came from one.
	Status int `json:"status,omitempty"`
}

// NewErrorResponse creates an error envelope.
func NewErrorResponse(httpStatus int, errorType, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:      ErrorDetail{Type: errorType, Message: message},
		HTTPStatus: httpStatus,
	}
}

// NewServerError creates a 500 envelope.
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, ErrorTypeServerError, message)
}
