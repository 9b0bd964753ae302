package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/telemetry/logging"
)

// RequestIDHeader is the HTTP header for request ID.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied IDs so they cannot bloat logs.
const maxRequestIDLength = 128

// RequestIDMiddleware makes sure every request carries an ID. A client-sent
// X-Request-ID is kept; otherwise a UUID v4 is generated. The ID is stored
// with logging.WithRequestID, so every log line written with the request
// context carries request_id, and it is echoed in the response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

