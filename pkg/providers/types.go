package providers

import (
	"strings"
	"time"
)

// Request defaults applied by NewCompletionRequest.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500

	// MaxTemperature is the upper bound accepted by both supported APIs.
	MaxTemperature = 2.0
)

// Message roles used in the outbound chat body.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Normalized finish reasons.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
	FinishReasonToolCalls     = "tool_calls"
)

// Message is a single chat message in the outbound request body.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage tracks token consumption reported by the upstream.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens used (prompt + completion)
	TotalTokens int `json:"total_tokens"`

	// CacheHitTokens and CacheMissTokens are only reported by DeepSeek
	CacheHitTokens  int `json:"prompt_cache_hit_tokens,omitempty"`
	CacheMissTokens int `json:"prompt_cache_miss_tokens,omitempty"`
}

// CompletionRequest is a single-prompt completion request.
// It is passed by value so transports cannot mutate the caller's copy.
type CompletionRequest struct {
	// Prompt is sent as the content of a single user-role message
	Prompt string

	// Model is the model identifier; empty means the transport default
	Model string

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64

	// MaxTokens is the maximum number of tokens to generate
	MaxTokens int
}

// RequestOption customizes a CompletionRequest built by NewCompletionRequest.
type RequestOption func(*CompletionRequest)

// WithModel sets the model identifier.
func WithModel(model string) RequestOption {
	return func(r *CompletionRequest) { r.Model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) RequestOption {
	return func(r *CompletionRequest) { r.Temperature = t }
}

// WithMaxTokens sets the generation limit.
func WithMaxTokens(n int) RequestOption {
	return func(r *CompletionRequest) { r.MaxTokens = n }
}

// NewCompletionRequest builds a request with defaults applied
// (temperature 0.7, 500 max tokens) and then the given options.
func NewCompletionRequest(prompt string, opts ...RequestOption) CompletionRequest {
	req := CompletionRequest{
		Prompt:      prompt,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// Validate checks the request before it is sent upstream.
func (r CompletionRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return &ValidationError{Field: "prompt", Message: "prompt must not be empty"}
	}
	if r.Temperature < 0 || r.Temperature > MaxTemperature {
		return &ValidationError{Field: "temperature", Message: "temperature must be between 0 and 2"}
	}
	if r.MaxTokens <= 0 {
		return &ValidationError{Field: "max_tokens", Message: "max_tokens must be positive"}
	}
	return nil
}

// Messages returns the chat messages for the outbound body.
func (r CompletionRequest) Messages() []Message {
	return []Message{{Role: RoleUser, Content: r.Prompt}}
}

// CompletionResult is the outcome of a successful Complete call.
type CompletionResult struct {
	// Text is the content of the first choice, empty if the upstream returned no choices
	Text string `json:"text"`

	// Usage contains token consumption information
	Usage Usage `json:"usage"`

	// Model is the model that generated the response
	Model string `json:"model"`

	ID           string `json:"-"`
	FinishReason string `json:"-"`

	// Reasoning holds the reasoning trace returned by reasoning models
	Reasoning string `json:"-"`

	// Attempts is the number of upstream attempts it took
	Attempts int `json:"-"`
}

// ProviderConfig contains configuration for a single transport.
type ProviderConfig struct {
	// Name is the unique identifier for this provider (e.g., "deepseek")
	Name string

	// Type is the transport variant ("openai", "deepseek")
	Type string

	// BaseURL is the API base URL; empty means the variant default
	BaseURL string

	// APIKey is the static credential; ignored when Credentials is set
	APIKey string

	// Credentials supplies the API key per attempt, allowing rotation
	Credentials CredentialSource

	// Model overrides the variant's default model
	Model string

	// Organization is sent as OpenAI-Organization by the openai variant
	Organization string

	// Timeout bounds a single HTTP exchange at the client level
	Timeout time.Duration

	// HealthCheckInterval is how often the background checker runs
	HealthCheckInterval time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// ProviderHealth tracks the health status of a transport as seen by the
// background health checker.
type ProviderHealth struct {
	// IsHealthy indicates whether the provider is currently healthy
	IsHealthy bool

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential health check failures
	ConsecutiveFailures int
}
