package providers

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies a terminal Complete failure.
type ErrorKind string

const (
	// KindRateLimitExceeded is returned when every attempt was answered with HTTP 429.
	KindRateLimitExceeded ErrorKind = "rate_limit_exceeded"

	// KindAuthentication is returned for HTTP 401. Never retried.
	KindAuthentication ErrorKind = "authentication_error"

	// KindAuthorization is returned for HTTP 403. Never retried.
	KindAuthorization ErrorKind = "authorization_error"

	// KindUpstreamServer is returned when every attempt ended with a 5xx status.
	KindUpstreamServer ErrorKind = "upstream_server_error"

	// KindUpstream is returned for any other non-2xx status. Never retried.
	KindUpstream ErrorKind = "upstream_error"

	// KindNetwork is returned when every attempt ended with a transport fault.
	KindNetwork ErrorKind = "network_error"

	// KindCanceled is returned when the caller's context is canceled first.
	KindCanceled ErrorKind = "canceled"

	// KindTimeout is returned when the caller's deadline passes first.
	KindTimeout ErrorKind = "timeout"

	// KindInvalidResponse is returned when a 2xx body cannot be decoded.
	KindInvalidResponse ErrorKind = "invalid_response"

	// KindRequest is returned for local, non-network faults.
	KindRequest ErrorKind = "request_error"

	// KindInvalidRequest is used by the HTTP layer for malformed inbound bodies.
	KindInvalidRequest ErrorKind = "invalid_request"
)

// StatusClientClosedRequest is the de-facto status for a request the client abandoned.
const StatusClientClosedRequest = 499

// rateLimitGuidance is appended to rate-limit failures surfaced to callers.
const rateLimitGuidance = "please wait 1-2 minutes before retrying"

// ClassifiedError is the only error type Client.Complete returns.
type ClassifiedError struct {
	// Kind is the failure class
	Kind ErrorKind

	// Message is a human-readable description
	Message string

	// Provider is the name of the transport that produced the failure
	Provider string

	// StatusCode and Status describe the last upstream response, if any
	StatusCode int
	Status     string

	// Body is the raw upstream body of the last response, kept for diagnostics
	Body string

	// RetryAfter is the wait the upstream advertised on its last 429;
	// HasRetryAfter is false when it advertised none
	RetryAfter    time.Duration
	HasRetryAfter bool

	// Attempts is the number of upstream attempts made
	Attempts int

	// Err is the underlying fault, if any
	Err error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the kind is retried while attempts remain.
func (e *ClassifiedError) Retryable() bool {
	switch e.Kind {
	case KindRateLimitExceeded, KindUpstreamServer, KindNetwork:
		return true
	default:
		return false
	}
}

// HTTPStatus maps the kind to the status the proxy answers with.
func (e *ClassifiedError) HTTPStatus() int {
	switch e.Kind {
	case KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindCanceled:
		return StatusClientClosedRequest
	case KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// StatusError is returned by a Transport when the upstream answers with a
// non-2xx status. The body is captured verbatim.
type StatusError struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Status is the status line text (e.g. "429 Too Many Requests")
	Status string

	// Body is the raw response body
	Body string

	// RetryAfter is the parsed Retry-After header. HasRetryAfter tells an
	// explicit "0" apart from a missing or unparseable header.
	RetryAfter    time.Duration
	HasRetryAfter bool
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %s", e.Status)
}

// ValidationError represents a request validation failure.
// This occurs when the request has invalid fields before sending to the provider.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ConfigError represents a provider configuration error.
type ConfigError struct {
	// Provider is the name of the provider with invalid configuration
	Provider string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// ParseError represents a response parsing failure.
// This occurs when the provider returns a 2xx response with a malformed body.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed response
	Provider string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
