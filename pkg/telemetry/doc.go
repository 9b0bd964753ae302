// Package telemetry groups the observability packages of the completion
// service.
//
// # Components
//
//   - logging: log/slog construction with API-key redaction and
//     request-scoped attributes
//   - metrics: Prometheus collector for upstream attempts, retries, waits,
//     classified errors, token usage and inbound HTTP requests
//
// The metrics collector implements providers.Observer, so it sees every
// attempt and every retry wait without taking part in retry decisions:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	client := providers.NewClient(transport, policy, providers.WithObserver(collector))
//	mux.Handle("GET /metrics", collector.Handler())
//
// # Redaction
//
// With redact_secrets enabled, values that look like API keys
// (sk-abc123...) or bearer tokens are masked before they reach the log
// output. Custom patterns can be configured.
package telemetry
