package types

import "github.com/i-zyk/deepseek-zyk-workers/pkg/providers"

// CompletionResponse is the success body.
type CompletionResponse struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
	Model string `json:"model"`

	// Reasoning is DeepSeek's reasoning_content, when the model produced one.
	Reasoning string `json:"reasoning,omitempty"`
}

// Usage reports token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewCompletionResponse converts a client result into the success body.
func NewCompletionResponse(result *providers.CompletionResult) *CompletionResponse {
	return &CompletionResponse{
		Text: result.Text,
		Usage: Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
		Model:     result.Model,
		Reasoning: result.Reasoning,
	}
}
