package openai

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

const (
	// TypeName is the configuration type selecting this variant.
	TypeName = "openai"

	// DefaultBaseURL is the public OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when neither the request nor the config names one.
	DefaultModel = "gpt-3.5-turbo"

	chatCompletionsPath = "chat/completions"
	modelsPath          = "models"
)

// Transport is the OpenAI chat-completions transport.
type Transport struct {
	*providers.HTTPTransport
	model        string
	organization string
}

// NewTransport creates an OpenAI transport. Missing base URL and model fall
// back to the public API defaults.
func NewTransport(config providers.ProviderConfig) (*Transport, error) {
	if config.Name == "" {
		config.Name = TypeName
	}
	config.Type = TypeName

	if config.APIKey == "" && config.Credentials == nil {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for OpenAI provider",
		}
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	t := &Transport{
		HTTPTransport: providers.NewHTTPTransport(config),
		model:         model,
		organization:  config.Organization,
	}

	slog.Info("OpenAI provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"model", model,
	)

	return t, nil
}

// SendCompletion performs one chat-completion exchange.
func (t *Transport) SendCompletion(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResult, error) {
	if req.Model == "" {
		req.Model = t.model
	}

	headers, err := t.headers(ctx)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	url := providers.JoinURL(t.Config().BaseURL, chatCompletionsPath)
	if err := t.DoJSON(ctx, http.MethodPost, url, newChatRequest(req), &resp, headers); err != nil {
		return nil, err
	}
	return resp.result(), nil
}

// HealthCheck lists models, which needs a valid key but no tokens.
func (t *Transport) HealthCheck(ctx context.Context) error {
	headers, err := t.headers(ctx)
	if err != nil {
		return err
	}
	_, err = t.Do(ctx, http.MethodGet, providers.JoinURL(t.Config().BaseURL, modelsPath), nil, headers)
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

func (t *Transport) headers(ctx context.Context) (map[string]string, error) {
	key, err := t.APIKey(ctx)
	if err != nil {
		return nil, err
	}
	headers := providers.BearerHeaders(key)
	if t.organization != "" {
		headers["OpenAI-Organization"] = t.organization
	}
	return headers, nil
}
