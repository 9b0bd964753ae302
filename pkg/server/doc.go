// Package server runs the completion HTTP server.
//
// Routes:
//
//	POST /v1/completions   one completion through the resilient client
//	GET  /health           liveness
//	GET  /ready            transport health from the background checker
//	GET  /metrics          Prometheus, when telemetry.metrics.enabled
//
// The client sits behind a Backend that Reload swaps atomically, so a
// config change to the retry policy or request defaults takes effect on
// the next request without a restart.
package server
