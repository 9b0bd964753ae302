package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	testhelpers "github.com/i-zyk/deepseek-zyk-workers/internal/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

func TestNewTransport_Defaults(t *testing.T) {
	transport, err := NewTransport(providers.ProviderConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	defer transport.Close()

	if transport.GetName() != "openai" || transport.GetType() != "openai" {
		t.Errorf("unexpected name/type %q/%q", transport.GetName(), transport.GetType())
	}
	if transport.Config().BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", transport.Config().BaseURL)
	}
	if transport.DefaultModel() != "gpt-3.5-turbo" {
		t.Errorf("expected default model gpt-3.5-turbo, got %q", transport.DefaultModel())
	}
}

func TestNewTransport_RequiresKey(t *testing.T) {
	_, err := NewTransport(providers.ProviderConfig{Name: "openai"})

	var ce *providers.ConfigError
	if !errors.As(err, &ce) || ce.Field != "api_key" {
		t.Fatalf("expected api_key ConfigError, got %v", err)
	}
}

func TestTransport_SendCompletion(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIResponse("Hello, world!", "gpt-4"),
	})

	config := testhelpers.TestConfigWithURL("openai", "openai", mock.URL()+"/v1")
	config.Organization = "org-42"
	transport, err := NewTransport(config)
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	defer transport.Close()

	req := providers.NewCompletionRequest("Hello", providers.WithModel("gpt-4"), providers.WithTemperature(0))
	result, err := transport.SendCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}

	if result.Text != "Hello, world!" || result.Model != "gpt-4" {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Usage.TotalTokens != 30 {
		t.Errorf("expected total tokens 30, got %d", result.Usage.TotalTokens)
	}
	if result.FinishReason != providers.FinishReasonStop {
		t.Errorf("expected finish reason %q, got %q", providers.FinishReasonStop, result.FinishReason)
	}

	recorded, ok := mock.LastRequest()
	if !ok {
		t.Fatal("expected a recorded request")
	}
	if recorded.Method != http.MethodPost {
		t.Errorf("expected POST, got %s", recorded.Method)
	}
	if got := recorded.Header.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("unexpected Authorization %q", got)
	}
	if got := recorded.Header.Get("OpenAI-Organization"); got != "org-42" {
		t.Errorf("unexpected OpenAI-Organization %q", got)
	}

	body := testhelpers.DecodeBody(t, recorded)
	if body["model"] != "gpt-4" {
		t.Errorf("unexpected model %v", body["model"])
	}
	// temperature 0 must still be sent
	if temp, ok := body["temperature"]; !ok || temp.(float64) != 0 {
		t.Errorf("expected temperature 0 in body, got %v", temp)
	}
	if body["max_tokens"].(float64) != 500 {
		t.Errorf("expected max_tokens 500, got %v", body["max_tokens"])
	}
	msgs := body["messages"].([]interface{})
	first := msgs[0].(map[string]interface{})
	if len(msgs) != 1 || first["role"] != "user" || first["content"] != "Hello" {
		t.Errorf("unexpected messages %v", msgs)
	}
}

func TestTransport_DefaultModelIsSent(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{Body: testhelpers.MockOpenAIResponse("x", "gpt-3.5-turbo")})

	transport, err := NewTransport(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()))
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	defer transport.Close()

	if _, err := transport.SendCompletion(context.Background(), providers.NewCompletionRequest("hi")); err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}

	recorded, _ := mock.LastRequest()
	if body := testhelpers.DecodeBody(t, recorded); body["model"] != DefaultModel {
		t.Errorf("expected default model, got %v", body["model"])
	}
}

func TestTransport_ErrorsAreNotRetried(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockServerError())

	transport, err := NewTransport(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()))
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	defer transport.Close()

	_, err = transport.SendCompletion(context.Background(), providers.NewCompletionRequest("hi"))

	var se *providers.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 StatusError, got %v", err)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("transport must not retry, got %d requests", mock.GetRequestCount())
	}
}

func TestTransport_WithClientRetries(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetSequence("/chat/completions",
		testhelpers.MockRateLimitError(-1),
		testhelpers.MockServerError(),
		testhelpers.MockResponse{Body: testhelpers.MockOpenAIResponse("finally", "gpt-3.5-turbo")},
	)

	transport, err := NewTransport(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()))
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	defer transport.Close()

	client := providers.NewClient(transport, testhelpers.FastRetryPolicy(3))
	result, err := client.Complete(context.Background(), providers.NewCompletionRequest("hi"))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if result.Text != "finally" || result.Attempts != 3 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestTransport_HealthCheck(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/models", testhelpers.MockResponse{Body: `{"data":[]}`})

	transport, err := NewTransport(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()))
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	defer transport.Close()

	if err := transport.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
	recorded, _ := mock.LastRequest()
	if recorded.Method != http.MethodGet || recorded.Path != "/models" {
		t.Errorf("unexpected health request %s %s", recorded.Method, recorded.Path)
	}
}

func TestChatResponse_NoChoices(t *testing.T) {
	result := (&chatResponse{Model: "m", Usage: providers.Usage{TotalTokens: 2}}).result()
	if result.Text != "" || result.Model != "m" || result.Usage.TotalTokens != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestNormalizeFinishReason(t *testing.T) {
	tests := map[string]string{
		"stop":           providers.FinishReasonStop,
		"length":         providers.FinishReasonLength,
		"function_call":  providers.FinishReasonToolCalls,
		"content_filter": providers.FinishReasonContentFilter,
		"other":          "other",
	}
	for in, want := range tests {
		if got := normalizeFinishReason(in); got != want {
			t.Errorf("normalizeFinishReason(%q) = %q, want %q", in, got, want)
		}
	}
}
