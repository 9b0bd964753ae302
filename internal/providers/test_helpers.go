package providers

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

// TestConfig returns a test provider configuration.
func TestConfig(name, providerType string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                name,
		Type:                providerType,
		BaseURL:             "http://localhost:8080",
		APIKey:              "test-key",
		Timeout:             5 * time.Second,
		HealthCheckInterval: 1 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestConfigWithURL returns a test config with a specific base URL.
func TestConfigWithURL(name, providerType, baseURL string) providers.ProviderConfig {
	config := TestConfig(name, providerType)
	config.BaseURL = baseURL
	return config
}

// FastRetryPolicy returns a policy with millisecond waits and no jitter.
func FastRetryPolicy(maxRetries int) providers.RetryPolicy {
	return providers.RetryPolicy{
		MaxRetries:     maxRetries,
		BaseDelay:      time.Millisecond,
		MaxDelay:       10 * time.Millisecond,
		AttemptTimeout: 5 * time.Second,
	}
}

// DecodeBody unmarshals a recorded request body into a generic map.
func DecodeBody(t *testing.T, req RecordedRequest) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("request body is not JSON: %v (%s)", err, req.Body)
	}
	return body
}

// AssertKind fails the test unless err is a ClassifiedError of kind.
func AssertKind(t *testing.T, err error, kind providers.ErrorKind) *providers.ClassifiedError {
	t.Helper()

	var ce *providers.ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *providers.ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%s)", kind, ce.Kind, ce.Message)
	}
	return ce
}

// WaitForCondition waits for a condition to become true within a timeout.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}

		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s: %s", timeout, message)
		}

		<-ticker.C
	}
}
