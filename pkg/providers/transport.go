package providers

import "context"

// Transport sends a single chat-completion attempt to one upstream API.
//
// A transport never retries. Non-2xx answers are returned as *StatusError
// and transport faults are returned unchanged so that Client can classify
// them. Implementations must honor context cancellation.
//
// Example usage:
//
//	transport, err := deepseek.NewTransport(config)
//	if err != nil {
//	    return err
//	}
//	client := providers.NewClient(transport, providers.DefaultRetryPolicy())
//	result, err := client.Complete(ctx, providers.NewCompletionRequest("Hello"))
type Transport interface {
	// SendCompletion performs exactly one HTTP exchange with the upstream.
	// An empty req.Model is replaced with DefaultModel.
	SendCompletion(ctx context.Context, req CompletionRequest) (*CompletionResult, error)

	// HealthCheck sends a lightweight request to verify the upstream is reachable.
	HealthCheck(ctx context.Context) error

	// GetName returns the configured provider name.
	GetName() string

	// GetType returns the transport variant ("openai", "deepseek").
	GetType() string

	// DefaultModel returns the model used when a request does not name one.
	DefaultModel() string

	// IsHealthy returns the health status maintained by the background checker.
	IsHealthy() bool

	// Close releases idle connections and stops the health checker.
	Close() error
}

// CredentialSource supplies the API key for an attempt.
// It is consulted on every attempt so rotated keys take effect immediately.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticKey is a CredentialSource that always returns the same key.
type StaticKey string

// APIKey implements CredentialSource.
func (k StaticKey) APIKey(context.Context) (string, error) {
	return string(k), nil
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func(ctx context.Context) (string, error)

// APIKey implements CredentialSource.
func (f CredentialFunc) APIKey(ctx context.Context) (string, error) {
	return f(ctx)
}
