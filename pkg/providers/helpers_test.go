package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// chatBody mirrors the outbound OpenAI-compatible request body.
type chatBody struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatReply struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage  `json:"usage"`
	Model string `json:"model"`
}

// testTransport is a minimal OpenAI-shaped variant built on HTTPTransport.
type testTransport struct {
	*HTTPTransport
}

func newTestTransport(baseURL string) *testTransport {
	return &testTransport{NewHTTPTransport(ProviderConfig{
		Name:    "test-provider",
		Type:    "test",
		BaseURL: baseURL,
		APIKey:  "sk-test",
		Timeout: 10 * time.Second,
	})}
}

func (t *testTransport) SendCompletion(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	key, err := t.APIKey(ctx)
	if err != nil {
		return nil, err
	}

	body := chatBody{
		Model:       req.Model,
		Messages:    req.Messages(),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var reply chatReply
	url := JoinURL(t.config.BaseURL, "chat/completions")
	if err := t.DoJSON(ctx, http.MethodPost, url, body, &reply, BearerHeaders(key)); err != nil {
		return nil, err
	}

	result := &CompletionResult{Usage: reply.Usage, Model: reply.Model}
	if len(reply.Choices) > 0 {
		result.Text = reply.Choices[0].Message.Content
	}
	return result, nil
}

func (t *testTransport) HealthCheck(context.Context) error { return nil }

func (t *testTransport) DefaultModel() string { return "test-model" }

// step is one scripted upstream answer.
type step struct {
	status int
	body   string
	header map[string]string
}

// scriptedServer answers with steps in order and repeats the last one.
// It returns the server and a counter of received requests.
func scriptedServer(t *testing.T, steps ...step) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(count.Add(1))
		s := steps[len(steps)-1]
		if n <= len(steps) {
			s = steps[n-1]
		}
		for k, v := range s.header {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
	}))
	t.Cleanup(server.Close)

	return server, &count
}

// fastPolicy keeps retries deterministic and quick.
func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:     maxRetries,
		BaseDelay:      time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Jitter:         0,
		AttemptTimeout: 5 * time.Second,
	}
}

// retryRecorder collects RetryEvents from WithRetryHook.
type retryRecorder struct {
	mu     sync.Mutex
	events []RetryEvent
}

func (r *retryRecorder) hook(e RetryEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *retryRecorder) list() []RetryEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RetryEvent(nil), r.events...)
}

const okBody = `{"choices":[{"message":{"content":"hi"}}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2},"model":"m"}`
