package proxy

import (
	"errors"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy/types"
)

// HandleError converts an error into the error envelope and the status it is
// written with. Classified client errors keep their kind as the envelope
// type; anything unclassified becomes a generic 500.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var ce *providers.ClassifiedError
	if errors.As(err, &ce) {
		resp := types.NewErrorResponse(ce.HTTPStatus(), string(ce.Kind), ce.Message)
		resp.Error.Status = ce.StatusCode
		if ce.Kind == providers.KindRateLimitExceeded {
			resp.RetryAfter = ce.RetryAfter
		}
		return resp
	}

	return types.NewServerError("An internal error occurred. Please try again later.")
}
