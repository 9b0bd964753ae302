package config

import (
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

// ProviderName returns the configured name, falling back to the type.
func (p ProviderConfig) ProviderName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Type
}

// TransportConfig converts the provider section into the transport
// configuration. Credentials are left to the caller.
func (p ProviderConfig) TransportConfig() providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                p.ProviderName(),
		Type:                p.Type,
		BaseURL:             p.BaseURL,
		APIKey:              p.APIKey,
		Model:               p.Model,
		Organization:        p.Organization,
		Timeout:             p.Timeout,
		HealthCheckInterval: p.HealthCheckInterval,
		MaxIdleConns:        p.MaxIdleConns,
		MaxIdleConnsPerHost: p.MaxIdleConnsPerHost,
		IdleConnTimeout:     p.IdleConnTimeout,
	}
}

// Policy converts the retry section into a providers.RetryPolicy.
func (r RetryConfig) Policy() providers.RetryPolicy {
	return providers.RetryPolicy{
		MaxRetries:     r.MaxRetries,
		BaseDelay:      r.BaseDelay,
		MaxDelay:       r.MaxDelay,
		Jitter:         r.Jitter,
		AttemptTimeout: r.AttemptTimeout,
		MaxElapsed:     r.MaxElapsed,
	}
}

// RequestOptions returns the options that apply the configured defaults to a
// new completion request. A non-empty provider model is included.
func (c *Config) RequestOptions() []providers.RequestOption {
	opts := []providers.RequestOption{
		providers.WithTemperature(c.Defaults.Temperature),
		providers.WithMaxTokens(c.Defaults.MaxTokens),
	}
	if c.Provider.Model != "" {
		opts = append(opts, providers.WithModel(c.Provider.Model))
	}
	return opts
}
