package deepseek

import (
	"context"
	"net/http"
	"testing"

	testhelpers "github.com/i-zyk/deepseek-zyk-workers/internal/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

func newTestTransport(t *testing.T, mock *testhelpers.MockServer) *Transport {
	t.Helper()

	transport, err := NewTransport(testhelpers.TestConfigWithURL("deepseek", "deepseek", mock.URL()))
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	t.Cleanup(func() { _ = transport.Close() })
	return transport
}

func TestNewTransport_Defaults(t *testing.T) {
	transport, err := NewTransport(providers.ProviderConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	defer transport.Close()

	if transport.Config().BaseURL != DefaultBaseURL {
		t.Errorf("expected %q, got %q", DefaultBaseURL, transport.Config().BaseURL)
	}
	if transport.DefaultModel() != "deepseek-chat" {
		t.Errorf("expected deepseek-chat, got %q", transport.DefaultModel())
	}
	if transport.GetType() != TypeName {
		t.Errorf("expected type %q, got %q", TypeName, transport.GetType())
	}
}

func TestNewTransport_CredentialsSatisfyKeyRequirement(t *testing.T) {
	transport, err := NewTransport(providers.ProviderConfig{
		Credentials: providers.StaticKey("sk-rotating"),
	})
	if err != nil {
		t.Fatalf("expected credentials to satisfy key requirement: %v", err)
	}
	_ = transport.Close()
}

func TestTransport_SendCompletion(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		Body: testhelpers.MockDeepSeekResponse("42", "Let me think.", ReasonerModel),
	})

	transport := newTestTransport(t, mock)
	result, err := transport.SendCompletion(context.Background(),
		providers.NewCompletionRequest("What is 6*7?", providers.WithModel(ReasonerModel)))
	if err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}

	if result.Text != "42" {
		t.Errorf("expected text 42, got %q", result.Text)
	}
	if result.Reasoning != "Let me think." {
		t.Errorf("expected reasoning content, got %q", result.Reasoning)
	}
	if result.Usage.TotalTokens != 26 || result.Usage.CacheMissTokens != 16 {
		t.Errorf("unexpected usage %+v", result.Usage)
	}

	recorded, _ := mock.LastRequest()
	body := testhelpers.DecodeBody(t, recorded)
	if body["model"] != ReasonerModel {
		t.Errorf("unexpected model %v", body["model"])
	}
	if body["stream"] != false {
		t.Errorf("expected stream=false, got %v", body["stream"])
	}
	if body["temperature"].(float64) != providers.DefaultTemperature {
		t.Errorf("unexpected temperature %v", body["temperature"])
	}
	if recorded.Header.Get("Authorization") != "Bearer test-key" {
		t.Errorf("unexpected Authorization %q", recorded.Header.Get("Authorization"))
	}
}

func TestTransport_EmptyChoices(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		Body: `{"id":"x","choices":[],"usage":{"prompt_tokens":1,"completion_tokens":0,"total_tokens":1},"model":"deepseek-chat"}`,
	})

	result, err := newTestTransport(t, mock).SendCompletion(context.Background(), providers.NewCompletionRequest("hi"))
	if err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}
	if result.Text != "" || result.Model != "deepseek-chat" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestClient_RetryScenarios(t *testing.T) {
	tests := []struct {
		name     string
		script   []testhelpers.MockResponse
		retries  int
		wantKind providers.ErrorKind
		wantReqs int
	}{
		{
			name:     "auth error stops immediately",
			script:   []testhelpers.MockResponse{testhelpers.MockAuthError()},
			retries:  3,
			wantKind: providers.KindAuthentication,
			wantReqs: 1,
		},
		{
			name:     "forbidden stops immediately",
			script:   []testhelpers.MockResponse{testhelpers.MockForbiddenError()},
			retries:  3,
			wantKind: providers.KindAuthorization,
			wantReqs: 1,
		},
		{
			name:     "rate limit exhausts attempts",
			script:   []testhelpers.MockResponse{testhelpers.MockRateLimitError(0)},
			retries:  3,
			wantKind: providers.KindRateLimitExceeded,
			wantReqs: 4,
		},
		{
			name:     "server errors exhaust attempts",
			script:   []testhelpers.MockResponse{testhelpers.MockServerError()},
			retries:  2,
			wantKind: providers.KindUpstreamServer,
			wantReqs: 3,
		},
		{
			name:     "insufficient balance is terminal",
			script:   []testhelpers.MockResponse{testhelpers.MockErrorResponse(http.StatusPaymentRequired, "Insufficient Balance")},
			retries:  3,
			wantKind: providers.KindUpstream,
			wantReqs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewMockServer()
			defer mock.Close()
			mock.SetSequence("/chat/completions", tt.script...)

			client := providers.NewClient(newTestTransport(t, mock), testhelpers.FastRetryPolicy(tt.retries))
			_, err := client.Complete(context.Background(), providers.NewCompletionRequest("hi"))

			testhelpers.AssertKind(t, err, tt.wantKind)
			if got := mock.GetRequestCount(); got != tt.wantReqs {
				t.Errorf("expected %d requests, got %d", tt.wantReqs, got)
			}
		})
	}
}
