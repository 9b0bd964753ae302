// Package types defines the JSON bodies of the completion endpoint.
//
// Request:
//
//	POST /v1/completions
//	{"prompt": "Hello", "model": "deepseek-chat", "temperature": 0.2, "max_tokens": 64}
//
// Only prompt is required. Omitted fields fall back to the configured
// defaults, and an omitted model means the provider's default model.
//
// Success:
//
//	{"text": "...", "usage": {"prompt_tokens": 1, "completion_tokens": 2, "total_tokens": 3}, "model": "deepseek-chat"}
//
// Failure:
//
//	{"error": {"type": "rate_limit_exceeded", "message": "...", "status": 429}}
//
// The error type is the classified error kind; status is the upstream HTTP
// status when there was one.
package types
