package openai

import (
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

// chatRequest is the request body. temperature and max_tokens carry no
// omitempty because zero is meaningful for both.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	N           int           `json:"n,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse holds the fields of a chat.completion object the client uses.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage providers.Usage `json:"usage"`
}

func newChatRequest(req providers.CompletionRequest) *chatRequest {
	body := &chatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		N:           1,
	}
	for _, m := range req.Messages() {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	return body
}

// result converts the response. Only the first choice is read since n is
// always 1; no choices at all yields an empty completion.
func (r *chatResponse) result() *providers.CompletionResult {
	out := &providers.CompletionResult{ID: r.ID, Model: r.Model, Usage: r.Usage}
	if len(r.Choices) > 0 {
		out.Text = r.Choices[0].Message.Content
		out.FinishReason = normalizeFinishReason(r.Choices[0].FinishReason)
	}
	return out
}

var finishReasons = map[string]string{
	"stop":           providers.FinishReasonStop,
	"length":         providers.FinishReasonLength,
	"tool_calls":     providers.FinishReasonToolCalls,
	"function_call":  providers.FinishReasonToolCalls,
	"content_filter": providers.FinishReasonContentFilter,
}

// normalizeFinishReason maps OpenAI finish reasons onto the shared
// constants and passes unknown values through.
func normalizeFinishReason(reason string) string {
	if r, ok := finishReasons[reason]; ok {
		return r
	}
	return reason
}
