// Package handlers implements the HTTP handlers of the completion server:
// POST /v1/completions, GET /health and GET /ready.
//
// The completion handler parses and validates the body, applies configured
// defaults, runs providers.Client.Complete, records the outcome in the
// ledger and writes either the success body or the error envelope. Retries
// happen inside the client; the handler makes exactly one Complete call.
package handlers
