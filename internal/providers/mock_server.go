package providers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockServer is a mock upstream for testing transports and the client.
// Each path can be scripted with a sequence of responses; once the
// sequence is exhausted the last response repeats.
type MockServer struct {
	server    *httptest.Server
	responses map[string][]MockResponse
	served    map[string]int
	requests  []RecordedRequest
	mu        sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
	Headers    map[string]string
}

// RecordedRequest is a request as seen by the mock server.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string][]MockResponse),
		served:    make(map[string]int),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a single mock response for a path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.SetSequence(path, response)
}

// SetSequence scripts the responses for a path in order.
func (ms *MockServer) SetSequence(path string, responses ...MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = responses
	ms.served[path] = 0
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.requests)
}

// Requests returns a copy of every request received so far.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return append([]RecordedRequest(nil), ms.requests...)
}

// LastRequest returns the most recent request, or false if none arrived.
func (ms *MockServer) LastRequest() (RecordedRequest, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if len(ms.requests) == 0 {
		return RecordedRequest{}, false
	}
	return ms.requests[len(ms.requests)-1], true
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests = append(ms.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	seq, ok := ms.responses[r.URL.Path]
	var response MockResponse
	if ok && len(seq) > 0 {
		i := ms.served[r.URL.Path]
		if i >= len(seq) {
			i = len(seq) - 1
		}
		response = seq[i]
		ms.served[r.URL.Path]++
	}
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

// MockOpenAIResponse creates a mock OpenAI chat completion response.
func MockOpenAIResponse(content string, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": 1677652288,
		"model":   model,
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     10,
			"completion_tokens": 20,
			"total_tokens":      30,
		},
	}
}

// MockDeepSeekResponse creates a mock DeepSeek chat completion response,
// including reasoning content and prompt cache counters.
func MockDeepSeekResponse(content, reasoning, model string) map[string]interface{} {
	message := map[string]interface{}{
		"role":    "assistant",
		"content": content,
	}
	if reasoning != "" {
		message["reasoning_content"] = reasoning
	}

	return map[string]interface{}{
		"id":      "930c60df-bf64-41c9-a88e-3ec75f81e00e",
		"object":  "chat.completion",
		"created": 1705651092,
		"model":   model,
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       message,
				"finish_reason": "stop",
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":            16,
			"completion_tokens":        10,
			"total_tokens":             26,
			"prompt_cache_hit_tokens":  0,
			"prompt_cache_miss_tokens": 16,
		},
	}
}

// MockErrorResponse creates a mock error response in the OpenAI error shape.
func MockErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
				"type":    "error",
			},
		},
	}
}

// MockAuthError creates a mock 401 response.
func MockAuthError() MockResponse {
	return MockErrorResponse(http.StatusUnauthorized, "Invalid API key")
}

// MockForbiddenError creates a mock 403 response.
func MockForbiddenError() MockResponse {
	return MockErrorResponse(http.StatusForbidden, "Model access denied")
}

// MockRateLimitError creates a mock 429 response. A negative retryAfter
// omits the Retry-After header.
func MockRateLimitError(retryAfter int) MockResponse {
	resp := MockErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	if retryAfter >= 0 {
		resp.Headers = map[string]string{"Retry-After": strconv.Itoa(retryAfter)}
	}
	return resp
}

// MockServerError creates a mock 500 response.
func MockServerError() MockResponse {
	return MockErrorResponse(http.StatusInternalServerError, "Internal server error")
}

// MockTimeoutError creates a response that is delayed by delay.
func MockTimeoutError(delay time.Duration) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Delay:      delay,
	}
}
