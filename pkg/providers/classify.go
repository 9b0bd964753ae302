package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
)

// classifyStatus turns a non-2xx upstream answer into a ClassifiedError.
func classifyStatus(provider string, se *StatusError) *ClassifiedError {
	ce := &ClassifiedError{
		Provider:   provider,
		StatusCode: se.StatusCode,
		Status:     se.Status,
		Body:       se.Body,
		Err:        se,
	}

	switch code := se.StatusCode; {
	case code == http.StatusTooManyRequests:
		ce.Kind = KindRateLimitExceeded
		ce.RetryAfter, ce.HasRetryAfter = se.RetryAfter, se.HasRetryAfter
		ce.Message = "upstream rate limit exceeded; " + rateLimitGuidance
	case code == http.StatusUnauthorized:
		ce.Kind = KindAuthentication
		ce.Message = "upstream rejected the API key"
	case code == http.StatusForbidden:
		ce.Kind = KindAuthorization
		ce.Message = "API key is not allowed to use this resource"
	case code >= http.StatusInternalServerError:
		ce.Kind = KindUpstreamServer
		ce.Message = fmt.Sprintf("upstream server error: %s", se.Status)
	default:
		ce.Kind = KindUpstream
		ce.Message = fmt.Sprintf("upstream error: %s", se.Status)
	}

	return ce
}

// classifyFault classifies an attempt error that is not a *StatusError.
// parent is the caller's context; a per-attempt deadline is a network
// fault while the end of the caller's own context is terminal.
func classifyFault(parent context.Context, provider string, err error) *ClassifiedError {
	if parent.Err() != nil {
		return interrupted(parent, provider, "during attempt", err)
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		return &ClassifiedError{
			Kind:     KindInvalidResponse,
			Provider: provider,
			Message:  "upstream returned an unreadable response",
			Body:     pe.RawResponse,
			Err:      err,
		}
	}

	if IsNetworkError(err) {
		return &ClassifiedError{
			Kind:     KindNetwork,
			Provider: provider,
			Message:  "network error talking to upstream: " + err.Error(),
			Err:      err,
		}
	}

	return &ClassifiedError{
		Kind:     KindRequest,
		Provider: provider,
		Message:  err.Error(),
		Err:      err,
	}
}

// interrupted classifies a call cut short by the end of ctx. A passed
// deadline is KindTimeout; only a real cancellation is KindCanceled.
func interrupted(ctx context.Context, provider, during string, err error) *ClassifiedError {
	cause := context.Cause(ctx)
	if cause == nil {
		cause = context.Canceled
	}
	if errors.Is(cause, context.DeadlineExceeded) {
		return &ClassifiedError{
			Kind:     KindTimeout,
			Provider: provider,
			Message:  "deadline exceeded " + during,
			Err:      err,
		}
	}
	return &ClassifiedError{
		Kind:     KindCanceled,
		Provider: provider,
		Message:  "request canceled " + during + ": " + cause.Error(),
		Err:      err,
	}
}

// IsNetworkError reports whether err is a transport-level fault. It relies
// on the error types produced by net, syscall and io rather than on the
// error text.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	// net/http wraps every client error in *url.Error, which itself
	// satisfies net.Error; look at what it wraps.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
