package proxy

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy/types"
)

// WriteJSONResponse writes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteErrorResponse writes the error envelope. A positive RetryAfter is
// sent as a Retry-After header in whole seconds, rounded up.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	if errResp.RetryAfter > 0 {
		secs := int(math.Ceil(errResp.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	status := errResp.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return WriteJSONResponse(w, status, errResp)
}

// WriteError classifies err and writes the resulting envelope.
func WriteError(w http.ResponseWriter, err error) error {
	return WriteErrorResponse(w, HandleError(err))
}
