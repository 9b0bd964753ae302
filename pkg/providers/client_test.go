package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Success(t *testing.T) {
	var (
		mu   sync.Mutex
		got  chatBody
		auth string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		auth = r.Header.Get("Authorization")
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		_, _ = w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := NewClient(newTestTransport(server.URL), fastPolicy(3))
	result, err := client.Complete(context.Background(), NewCompletionRequest("say hi"))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if result.Text != "hi" {
		t.Errorf("expected text %q, got %q", "hi", result.Text)
	}
	if result.Usage.PromptTokens != 1 || result.Usage.CompletionTokens != 1 || result.Usage.TotalTokens != 2 {
		t.Errorf("unexpected usage %+v", result.Usage)
	}
	if result.Model != "m" {
		t.Errorf("expected model %q, got %q", "m", result.Model)
	}
	if result.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", result.Attempts)
	}

	mu.Lock()
	defer mu.Unlock()
	if auth != "Bearer sk-test" {
		t.Errorf("expected bearer credential, got %q", auth)
	}
	if got.Model != "test-model" {
		t.Errorf("expected default model, got %q", got.Model)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != RoleUser || got.Messages[0].Content != "say hi" {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
	if got.Temperature != DefaultTemperature || got.MaxTokens != DefaultMaxTokens {
		t.Errorf("expected defaults 0.7/500, got %v/%d", got.Temperature, got.MaxTokens)
	}
}

func TestClient_EmptyChoices(t *testing.T) {
	server, _ := scriptedServer(t, step{status: 200, body: `{"choices":[],"usage":{"total_tokens":3},"model":"m"}`})

	client := NewClient(newTestTransport(server.URL), fastPolicy(3))
	result, err := client.Complete(context.Background(), NewCompletionRequest("x"))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if result.Text != "" {
		t.Errorf("expected empty text, got %q", result.Text)
	}
	if result.Usage.TotalTokens != 3 {
		t.Errorf("expected usage to be kept, got %+v", result.Usage)
	}
}

func TestClient_AuthFailuresAreNeverRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ErrorKind
		http   int
	}{
		{"401 unauthorized", http.StatusUnauthorized, KindAuthentication, http.StatusUnauthorized},
		{"403 forbidden", http.StatusForbidden, KindAuthorization, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, count := scriptedServer(t, step{status: tt.status, body: `{"error":"nope"}`})

			var rec retryRecorder
			client := NewClient(newTestTransport(server.URL), fastPolicy(3), WithRetryHook(rec.hook))
			_, err := client.Complete(context.Background(), NewCompletionRequest("x"))

			var ce *ClassifiedError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
			}
			if ce.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, ce.Kind)
			}
			if ce.HTTPStatus() != tt.http {
				t.Errorf("expected HTTP status %d, got %d", tt.http, ce.HTTPStatus())
			}
			if ce.Body != `{"error":"nope"}` {
				t.Errorf("expected body to be captured, got %q", ce.Body)
			}
			if n := count.Load(); n != 1 {
				t.Errorf("expected exactly 1 attempt, got %d", n)
			}
			if len(rec.list()) != 0 {
				t.Errorf("expected no retries, got %d", len(rec.list()))
			}
		})
	}
}

func TestClient_RateLimitExhausted(t *testing.T) {
	server, count := scriptedServer(t, step{status: http.StatusTooManyRequests, body: "slow down"})

	var rec retryRecorder
	client := NewClient(newTestTransport(server.URL), fastPolicy(3), WithRetryHook(rec.hook))
	_, err := client.Complete(context.Background(), NewCompletionRequest("x"))

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != KindRateLimitExceeded {
		t.Errorf("expected %s, got %s", KindRateLimitExceeded, ce.Kind)
	}
	if !strings.Contains(ce.Message, "1-2 minutes") {
		t.Errorf("expected wait guidance in message, got %q", ce.Message)
	}
	if ce.HTTPStatus() != http.StatusTooManyRequests {
		t.Errorf("expected 429 mapping, got %d", ce.HTTPStatus())
	}
	if n := count.Load(); n != 4 {
		t.Errorf("expected 4 attempts, got %d", n)
	}
	if ce.Attempts != 4 {
		t.Errorf("expected error to report 4 attempts, got %d", ce.Attempts)
	}
	if len(rec.list()) != 3 {
		t.Errorf("expected 3 waits, got %d", len(rec.list()))
	}
}

func TestClient_RetryAfterOverridesBackoff(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a real Retry-After interval")
	}

	server, count := scriptedServer(t,
		step{status: http.StatusTooManyRequests, header: map[string]string{"Retry-After": "2"}},
		step{status: http.StatusOK, body: okBody},
	)

	var rec retryRecorder
	client := NewClient(newTestTransport(server.URL), fastPolicy(3), WithRetryHook(rec.hook))

	start := time.Now()
	result, err := client.Complete(context.Background(), NewCompletionRequest("x"))
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if result.Text != "hi" {
		t.Errorf("expected text %q, got %q", "hi", result.Text)
	}
	if n := count.Load(); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}

	events := rec.list()
	if len(events) != 1 {
		t.Fatalf("expected 1 wait, got %d", len(events))
	}
	if events[0].Wait != 2*time.Second {
		t.Errorf("expected wait of 2s, got %s", events[0].Wait)
	}
	if elapsed < 1950*time.Millisecond {
		t.Errorf("expected to wait at least ~2s, waited %s", elapsed)
	}
}

func TestClient_ZeroRetryAfterRetriesImmediately(t *testing.T) {
	server, count := scriptedServer(t,
		step{status: http.StatusTooManyRequests, header: map[string]string{"Retry-After": "0"}},
		step{status: http.StatusOK, body: okBody},
	)

	policy := fastPolicy(3)
	policy.BaseDelay = 300 * time.Millisecond
	policy.MaxDelay = time.Second

	var rec retryRecorder
	client := NewClient(newTestTransport(server.URL), policy, WithRetryHook(rec.hook))

	result, err := client.Complete(context.Background(), NewCompletionRequest("x"))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if result.Attempts != 2 || count.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d (server saw %d)", result.Attempts, count.Load())
	}

	events := rec.list()
	if len(events) != 1 {
		t.Fatalf("expected 1 wait, got %d", len(events))
	}
	if events[0].Wait != 0 {
		t.Errorf("an advertised zero wait must win over the %s base delay, waited %s", policy.BaseDelay, events[0].Wait)
	}
}

func TestClient_RetryBudgetStopsLongRetryAfter(t *testing.T) {
	server, count := scriptedServer(t, step{
		status: http.StatusTooManyRequests,
		header: map[string]string{"Retry-After": "30"},
	})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	policy := fastPolicy(3)
	policy.MaxElapsed = time.Second
	client := NewClient(newTestTransport(server.URL), policy, WithLogger(logger))

	start := time.Now()
	_, err := client.Complete(context.Background(), NewCompletionRequest("x"))
	if time.Since(start) > 5*time.Second {
		t.Fatal("a wait beyond the retry budget was not skipped")
	}

	var ce *ClassifiedError
	if !errors.As(err, &ce) || ce.Kind != KindRateLimitExceeded {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if ce.Attempts != 1 || count.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", ce.Attempts)
	}
	if !strings.Contains(ce.Message, "retry budget of 1s exhausted") {
		t.Errorf("message does not explain the early stop: %q", ce.Message)
	}
	if !strings.Contains(logs.String(), "retry budget exhausted") {
		t.Errorf("early stop was not logged:\n%s", logs.String())
	}
}

func TestClient_ServerErrorsThenSuccess(t *testing.T) {
	server, count := scriptedServer(t,
		step{status: http.StatusInternalServerError, body: "boom"},
		step{status: http.StatusInternalServerError, body: "boom"},
		step{status: http.StatusOK, body: `{"choices":[{"message":{"content":"third"}}],"model":"m"}`},
	)

	var rec retryRecorder
	client := NewClient(newTestTransport(server.URL), fastPolicy(2), WithRetryHook(rec.hook))
	result, err := client.Complete(context.Background(), NewCompletionRequest("x"))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if result.Text != "third" {
		t.Errorf("expected text from third attempt, got %q", result.Text)
	}
	if result.Attempts != 3 || count.Load() != 3 {
		t.Errorf("expected 3 attempts, got result=%d server=%d", result.Attempts, count.Load())
	}

	events := rec.list()
	if len(events) != 2 {
		t.Fatalf("expected exactly 2 waits, got %d", len(events))
	}
	for i, e := range events {
		if e.Attempt != i {
			t.Errorf("event %d: expected attempt %d, got %d", i, i, e.Attempt)
		}
		if e.Kind != KindUpstreamServer || e.StatusCode != http.StatusInternalServerError {
			t.Errorf("event %d: unexpected %s/%d", i, e.Kind, e.StatusCode)
		}
	}
	// attempt 0 waits 1ms, attempt 1 waits 2ms with no jitter
	if events[0].Wait != time.Millisecond || events[1].Wait != 2*time.Millisecond {
		t.Errorf("unexpected waits %s, %s", events[0].Wait, events[1].Wait)
	}
}

func TestClient_ServerErrorExhausted(t *testing.T) {
	server, count := scriptedServer(t, step{status: http.StatusBadGateway, body: "<html>bad gateway</html>"})

	client := NewClient(newTestTransport(server.URL), fastPolicy(1))
	_, err := client.Complete(context.Background(), NewCompletionRequest("x"))

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != KindUpstreamServer {
		t.Errorf("expected %s, got %s", KindUpstreamServer, ce.Kind)
	}
	if ce.StatusCode != http.StatusBadGateway {
		t.Errorf("expected last status 502, got %d", ce.StatusCode)
	}
	if ce.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("expected 500 mapping, got %d", ce.HTTPStatus())
	}
	if n := count.Load(); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}
}

func TestClient_OtherStatusIsTerminal(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server, count := scriptedServer(t, step{status: status, body: "bad"})

			client := NewClient(newTestTransport(server.URL), fastPolicy(3))
			_, err := client.Complete(context.Background(), NewCompletionRequest("x"))

			var ce *ClassifiedError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
			}
			if ce.Kind != KindUpstream {
				t.Errorf("expected %s, got %s", KindUpstream, ce.Kind)
			}
			if ce.StatusCode != status || !strings.Contains(ce.Status, http.StatusText(status)) {
				t.Errorf("expected status %d with text, got %d %q", status, ce.StatusCode, ce.Status)
			}
			if n := count.Load(); n != 1 {
				t.Errorf("expected 1 attempt, got %d", n)
			}
		})
	}
}

func TestClient_ConnectionRefusedIsRetried(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	var rec retryRecorder
	client := NewClient(newTestTransport(url), fastPolicy(2), WithRetryHook(rec.hook))
	_, err := client.Complete(context.Background(), NewCompletionRequest("x"))

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != KindNetwork {
		t.Errorf("expected %s, got %s (%v)", KindNetwork, ce.Kind, ce.Err)
	}
	if ce.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", ce.Attempts)
	}
	if len(rec.list()) != 2 {
		t.Errorf("expected 2 waits, got %d", len(rec.list()))
	}
}

func TestClient_TruncatedBodyThenSuccess(t *testing.T) {
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if count.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("server does not support hijacking")
				return
			}
			conn, buf, _ := hj.Hijack()
			_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\n{\"choi")
			_ = buf.Flush()
			_ = conn.Close()
			return
		}
		_, _ = w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := NewClient(newTestTransport(server.URL), fastPolicy(2))
	result, err := client.Complete(context.Background(), NewCompletionRequest("x"))
	if err != nil {
		t.Fatalf("expected recovery after truncated body, got %v", err)
	}
	if result.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", result.Attempts)
	}
}

func TestClient_AttemptTimeoutIsRetried(t *testing.T) {
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	policy := fastPolicy(1)
	policy.AttemptTimeout = 50 * time.Millisecond

	client := NewClient(newTestTransport(server.URL), policy)
	_, err := client.Complete(context.Background(), NewCompletionRequest("x"))

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != KindNetwork {
		t.Errorf("expected %s, got %s", KindNetwork, ce.Kind)
	}
	if n := count.Load(); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}
}

func TestClient_NonNetworkFaultIsNotRetried(t *testing.T) {
	fault := errors.New("template rendering failed")
	transport := &stubTransport{err: fault}

	client := NewClient(transport, fastPolicy(3))
	_, err := client.Complete(context.Background(), NewCompletionRequest("x"))

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != KindRequest {
		t.Errorf("expected %s, got %s", KindRequest, ce.Kind)
	}
	if !errors.Is(err, fault) {
		t.Error("expected the original fault to stay in the chain")
	}
	if n := transport.calls.Load(); n != 1 {
		t.Errorf("expected 1 attempt, got %d", n)
	}
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	server, count := scriptedServer(t, step{status: http.StatusOK, body: "not json"})

	client := NewClient(newTestTransport(server.URL), fastPolicy(3))
	_, err := client.Complete(context.Background(), NewCompletionRequest("x"))

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != KindInvalidResponse {
		t.Errorf("expected %s, got %s", KindInvalidResponse, ce.Kind)
	}
	if ce.Body != "not json" {
		t.Errorf("expected raw body to be kept, got %q", ce.Body)
	}
	if n := count.Load(); n != 1 {
		t.Errorf("expected 1 attempt, got %d", n)
	}
}

func TestClient_CancelDuringWait(t *testing.T) {
	server, count := scriptedServer(t, step{
		status: http.StatusTooManyRequests,
		header: map[string]string{"Retry-After": "30"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(newTestTransport(server.URL), fastPolicy(3), WithRetryHook(func(RetryEvent) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
	}))

	start := time.Now()
	_, err := client.Complete(ctx, NewCompletionRequest("x"))
	if time.Since(start) > 5*time.Second {
		t.Fatalf("cancellation did not abort the wait")
	}

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != KindCanceled {
		t.Errorf("expected %s, got %s", KindCanceled, ce.Kind)
	}
	if ce.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected last upstream status to be kept, got %d", ce.StatusCode)
	}
	if n := count.Load(); n != 1 {
		t.Errorf("expected 1 attempt, got %d", n)
	}
}

func TestClient_CancelBeforeStart(t *testing.T) {
	server, _ := scriptedServer(t, step{status: http.StatusOK, body: okBody})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(newTestTransport(server.URL), fastPolicy(3))
	_, err := client.Complete(ctx, NewCompletionRequest("x"))

	var ce *ClassifiedError
	if !errors.As(err, &ce) || ce.Kind != KindCanceled {
		t.Fatalf("expected canceled error, got %v", err)
	}
}

// blockingTransport holds every attempt until its context ends.
type blockingTransport struct{ stubTransport }

func (b *blockingTransport) SendCompletion(ctx context.Context, _ CompletionRequest) (*CompletionResult, error) {
	b.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestClient_CallerDeadlineIsTimeout(t *testing.T) {
	transport := &blockingTransport{}
	client := NewClient(transport, fastPolicy(3))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Complete(ctx, NewCompletionRequest("x"))

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != KindTimeout {
		t.Errorf("expected %s, got %s", KindTimeout, ce.Kind)
	}
	if ce.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("a deadline must not map to a client-abort status, got %d", ce.HTTPStatus())
	}
	if n := transport.calls.Load(); n != 1 {
		t.Errorf("expected 1 attempt, got %d", n)
	}
}

func TestClient_CallerDeadlineDuringWait(t *testing.T) {
	server, _ := scriptedServer(t, step{
		status: http.StatusTooManyRequests,
		header: map[string]string{"Retry-After": "30"},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	client := NewClient(newTestTransport(server.URL), fastPolicy(3))
	_, err := client.Complete(ctx, NewCompletionRequest("x"))

	var ce *ClassifiedError
	if !errors.As(err, &ce) || ce.Kind != KindTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if ce.StatusCode != http.StatusTooManyRequests || ce.Attempts != 1 {
		t.Errorf("expected last 429 and 1 attempt to be kept, got %d / %d", ce.StatusCode, ce.Attempts)
	}
}

func TestClient_InvalidRequest(t *testing.T) {
	transport := &stubTransport{}
	client := NewClient(transport, fastPolicy(3))

	_, err := client.Complete(context.Background(), NewCompletionRequest("   "))

	var ce *ClassifiedError
	if !errors.As(err, &ce) || ce.Kind != KindInvalidRequest {
		t.Fatalf("expected invalid request error, got %v", err)
	}
	if transport.calls.Load() != 0 {
		t.Error("expected no upstream attempt for an invalid request")
	}
}

func TestClient_IdenticalCallsClassifyIdentically(t *testing.T) {
	server, _ := scriptedServer(t, step{status: http.StatusServiceUnavailable, body: "down"})
	client := NewClient(newTestTransport(server.URL), fastPolicy(2))

	var outcomes []*ClassifiedError
	for i := 0; i < 3; i++ {
		_, err := client.Complete(context.Background(), NewCompletionRequest("x"))
		var ce *ClassifiedError
		if !errors.As(err, &ce) {
			t.Fatalf("call %d: expected ClassifiedError, got %v", i, err)
		}
		outcomes = append(outcomes, ce)
	}

	for i, ce := range outcomes[1:] {
		first := outcomes[0]
		if ce.Kind != first.Kind || ce.StatusCode != first.StatusCode || ce.Attempts != first.Attempts || ce.Message != first.Message {
			t.Errorf("call %d differs: %+v vs %+v", i+1, ce, first)
		}
	}
}

func TestClient_ConcurrentCallsAreIndependent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.HasPrefix(body.Messages[0].Content, "fail") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := NewClient(newTestTransport(server.URL), fastPolicy(2))

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prompt := "ok"
			if i%2 == 1 {
				prompt = "fail"
			}
			_, errs[i] = client.Complete(context.Background(), NewCompletionRequest(prompt))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if i%2 == 0 && err != nil {
			t.Errorf("call %d: expected success, got %v", i, err)
		}
		var ce *ClassifiedError
		if i%2 == 1 && (!errors.As(err, &ce) || ce.Kind != KindAuthentication || ce.Attempts != 1) {
			t.Errorf("call %d: expected single-attempt auth error, got %v", i, err)
		}
	}
}

// stubTransport returns a fixed result or error without any I/O.
type stubTransport struct {
	result *CompletionResult
	err    error
	calls  atomic.Int32
}

func (s *stubTransport) SendCompletion(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		r := *s.result
		return &r, nil
	}
	return &CompletionResult{Text: req.Prompt, Model: req.Model}, nil
}

func (s *stubTransport) HealthCheck(context.Context) error { return nil }
func (s *stubTransport) GetName() string                   { return "stub" }
func (s *stubTransport) GetType() string                   { return "stub" }
func (s *stubTransport) DefaultModel() string              { return "stub-model" }
func (s *stubTransport) IsHealthy() bool                   { return true }
func (s *stubTransport) Close() error                      { return nil }
