package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy/types"
)

// DefaultMaxRequestBodySize is used when no body limit is configured (1MB).
const DefaultMaxRequestBodySize = 1 << 20

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message    string
	Violations []string
	TooLarge   bool
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if len(e.Violations) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Violations, "; ")
}

// ToErrorResponse converts the error into an invalid_request envelope.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	if e.TooLarge {
		return types.NewErrorResponse(http.StatusRequestEntityTooLarge, types.ErrorTypeRequestTooLarge, e.Error())
	}
	return types.NewErrorResponse(http.StatusBadRequest, string(providers.KindInvalidRequest), e.Error())
}

// ParseCompletionRequest reads and validates a completion body. Bodies larger
// than maxBytes are rejected; maxBytes <= 0 means DefaultMaxRequestBodySize.
func ParseCompletionRequest(r *http.Request, maxBytes int64) (*types.CompletionRequest, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBodySize
	}

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &RequestError{
				Message:  fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBytes),
				TooLarge: true,
			}
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) == 0 {
		return nil, &RequestError{Message: "request body is empty"}
	}

	violations, err := ValidateCompletionBody(body)
	if err != nil {
		return nil, &RequestError{Message: "invalid JSON", Violations: []string{err.Error()}}
	}
	if len(violations) > 0 {
		return nil, &RequestError{Message: "invalid completion request", Violations: violations}
	}

	var req types.CompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return &req, nil
}

// BuildCompletionRequest turns an inbound body into a client request.
// defaults are applied first, then the fields the caller set explicitly.
func BuildCompletionRequest(in *types.CompletionRequest, defaults ...providers.RequestOption) providers.CompletionRequest {
	opts := append([]providers.RequestOption(nil), defaults...)
	if in.Model != nil {
		opts = append(opts, providers.WithModel(*in.Model))
	}
	if in.Temperature != nil {
		opts = append(opts, providers.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, providers.WithMaxTokens(*in.MaxTokens))
	}
	return providers.NewCompletionRequest(in.Prompt, opts...)
}
