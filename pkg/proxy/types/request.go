package types

// CompletionRequest is the inbound completion body. Optional fields are
// pointers so an explicit zero is distinguishable from absence.
type CompletionRequest struct {
	Prompt      string   `json:"prompt"`
	Model       *string  `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}
