package handlers

import (
	"context"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

// Backend supplies the current client and request defaults. The server
// swaps both on config reload, so handlers fetch them per request.
type Backend interface {
	Client() *providers.Client
	RequestDefaults() []providers.RequestOption
}

// Recorder persists one ledger entry per completion call.
type Recorder interface {
	RecordCompletion(ctx context.Context, req providers.CompletionRequest, provider string, result *providers.CompletionResult, ce *providers.ClassifiedError, d time.Duration) error
}

// healthReporter is implemented by transports that run a background
// health checker.
type healthReporter interface {
	GetHealth() providers.ProviderHealth
}
