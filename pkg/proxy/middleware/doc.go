// Package middleware provides the HTTP middleware of the completion server.
//
// The server chains them outermost first:
//
//	Recovery → RequestID → Logging → CORS → Timeout → Metrics → mux
//
// RequestIDMiddleware stores the ID with logging.WithRequestID so every log
// line written with the request context is correlated. MetricsMiddleware
// sits directly on the mux so it can label observations with the matched
// route pattern.
package middleware
