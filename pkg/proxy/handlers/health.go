package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy"
)

// HealthHandler answers liveness checks. It never touches the upstream.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, response); err != nil {
		slog.ErrorContext(r.Context(), "failed to write health response", "error", err)
	}
}

// ReadyHandler answers readiness checks from the transport's background
// health checker state.
type ReadyHandler struct {
	Backend Backend
}

// NewReadyHandler creates a new readiness check handler.
func NewReadyHandler(backend Backend) *ReadyHandler {
	return &ReadyHandler{Backend: backend}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	transport := h.Backend.Client().Transport()

	status, statusCode := "ready", http.StatusOK
	if !transport.IsHealthy() {
		status, statusCode = "not_ready", http.StatusServiceUnavailable
	}

	provider := map[string]interface{}{
		"name":    transport.GetName(),
		"type":    transport.GetType(),
		"healthy": transport.IsHealthy(),
	}
	if hr, ok := transport.(healthReporter); ok {
		health := hr.GetHealth()
		if !health.LastCheck.IsZero() {
			provider["last_check"] = health.LastCheck.Unix()
		}
		if health.LastError != nil {
			provider["last_error"] = health.LastError.Error()
		}
		provider["consecutive_failures"] = health.ConsecutiveFailures
	}

	response := map[string]interface{}{
		"status":    status,
		"provider":  provider,
		"timestamp": time.Now().Unix(),
	}
	if err := proxy.WriteJSONResponse(w, statusCode, response); err != nil {
		slog.ErrorContext(r.Context(), "failed to write ready response", "error", err)
	}
}
