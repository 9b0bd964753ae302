package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers/deepseek"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers/openai"
)

// NewTransport creates the transport variant named by config.Type.
//
// Supported types:
//   - "deepseek": DeepSeek API
//   - "openai": OpenAI API and OpenAI-compatible servers
//
// If Type is empty it is inferred from the name and base URL, defaulting
// to deepseek.
func NewTransport(config providers.ProviderConfig) (providers.Transport, error) {
	providerType := strings.ToLower(config.Type)
	if providerType == "" {
		providerType = inferProviderType(config.Name, config.BaseURL)
	}
	config.Type = providerType

	slog.Debug("creating provider",
		"name", config.Name,
		"type", providerType,
		"base_url", config.BaseURL,
	)

	var (
		transport providers.Transport
		err       error
	)

	switch providerType {
	case deepseek.TypeName:
		transport, err = deepseek.NewTransport(config)

	case openai.TypeName:
		transport, err = openai.NewTransport(config)

	default:
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: deepseek, openai)", providerType),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", config.Name, err)
	}

	return transport, nil
}

// NewTransportWithHealthCheck creates a transport and starts its background
// health checker, which stops when ctx is cancelled or the transport is closed.
func NewTransportWithHealthCheck(ctx context.Context, config providers.ProviderConfig) (providers.Transport, error) {
	transport, err := NewTransport(config)
	if err != nil {
		return nil, err
	}

	type healthCheckStarter interface {
		StartHealthChecker(context.Context)
	}

	if hcs, ok := transport.(healthCheckStarter); ok {
		hcs.StartHealthChecker(ctx)
	} else {
		slog.Debug("provider does not support health checking", "name", config.Name)
	}

	return transport, nil
}

// inferProviderType infers the provider type from the name or base URL.
func inferProviderType(name, baseURL string) string {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "openai"), strings.Contains(baseURL, "api.openai.com"):
		return openai.TypeName
	default:
		return deepseek.TypeName
	}
}
