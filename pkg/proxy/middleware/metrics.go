package middleware

import (
	"net/http"
	"time"
)

// HTTPMetrics receives one observation per request.
type HTTPMetrics interface {
	RecordHTTPRequest(method, path string, status int, d time.Duration)
}

// MetricsMiddleware records method, route pattern, status and latency. It
// must wrap the ServeMux directly so the matched pattern is visible after
// the mux has run; unmatched requests are recorded as "unmatched" to keep
// the path label bounded.
func MetricsMiddleware(m HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := newResponseWriter(w)

			next.ServeHTTP(sr, r)

			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}
			m.RecordHTTPRequest(r.Method, path, sr.status, time.Since(start))
		})
	}
}
