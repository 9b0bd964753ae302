package deepseek

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

const (
	// TypeName is the configuration type selecting this variant.
	TypeName = "deepseek"

	// DefaultBaseURL is the public DeepSeek API endpoint.
	DefaultBaseURL = "https://api.deepseek.com"

	// DefaultModel is used when neither the request nor the config names one.
	DefaultModel = "deepseek-chat"

	// ReasonerModel returns reasoning_content alongside the answer.
	ReasonerModel = "deepseek-reasoner"
)

// Transport is the DeepSeek chat-completions transport.
type Transport struct {
	*providers.HTTPTransport
	model string
}

// NewTransport creates a DeepSeek transport.
func NewTransport(config providers.ProviderConfig) (*Transport, error) {
	if config.Name == "" {
		config.Name = TypeName
	}
	config.Type = TypeName

	if config.APIKey == "" && config.Credentials == nil {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for DeepSeek provider",
		}
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 50
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	slog.Info("DeepSeek provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"model", model,
	)

	return &Transport{
		HTTPTransport: providers.NewHTTPTransport(config),
		model:         model,
	}, nil
}

// SendCompletion performs one chat-completion exchange.
func (t *Transport) SendCompletion(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResult, error) {
	if req.Model == "" {
		req.Model = t.model
	}

	key, err := t.APIKey(ctx)
	if err != nil {
		return nil, err
	}

	var resp ChatResponse
	url := providers.JoinURL(t.Config().BaseURL, "chat/completions")
	if err := t.DoJSON(ctx, http.MethodPost, url, transformRequest(req), &resp, providers.BearerHeaders(key)); err != nil {
		return nil, err
	}

	return transformResponse(&resp), nil
}

// HealthCheck lists models, which needs a valid key but no tokens.
func (t *Transport) HealthCheck(ctx context.Context) error {
	key, err := t.APIKey(ctx)
	if err != nil {
		return err
	}
	_, err = t.Do(ctx, http.MethodGet, providers.JoinURL(t.Config().BaseURL, "models"), nil, providers.BearerHeaders(key))
	return err
}

// DefaultModel returns the model used when a request does not name one.
func (t *Transport) DefaultModel() string {
	return t.model
}

// StartHealthChecker runs HealthCheck in the background until ctx ends or
// the transport is closed.
func (t *Transport) StartHealthChecker(ctx context.Context) {
	t.HTTPTransport.StartHealthChecker(ctx, t.HealthCheck)
}
