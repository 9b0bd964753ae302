package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxErrorBody bounds how much of a non-2xx body is kept for diagnostics.
const maxErrorBody = 64 << 10

// HTTPTransport is the shared single-attempt HTTP layer embedded by the
// transport variants. It provides connection pooling, credential lookup and
// background health monitoring. It never retries.
type HTTPTransport struct {
	// config contains the provider configuration
	config ProviderConfig

	// client is the HTTP client with connection pooling
	client *http.Client

	// credentials supplies the API key per attempt
	credentials CredentialSource

	// health tracks the provider's health status
	health ProviderHealth

	// healthMu protects concurrent access to health status
	healthMu sync.RWMutex

	// stopHealthCheck is closed to signal the health checker to stop
	stopHealthCheck chan struct{}

	// healthCheckStopped is closed when the health checker has stopped
	healthCheckStopped chan struct{}

	checkerOnce sync.Once
	closeOnce   sync.Once
	started     bool
}

// NewHTTPTransport creates a new base HTTP transport with connection pooling.
func NewHTTPTransport(config ProviderConfig) *HTTPTransport {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	creds := config.Credentials
	if creds == nil {
		creds = StaticKey(config.APIKey)
	}

	return &HTTPTransport{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		credentials: creds,
		health: ProviderHealth{
			IsHealthy: true, // Start optimistic
			LastCheck: time.Now(),
		},
		stopHealthCheck:    make(chan struct{}),
		healthCheckStopped: make(chan struct{}),
	}
}

// GetName returns the provider's configured name.
func (t *HTTPTransport) GetName() string {
	return t.config.Name
}

// GetType returns the provider's type.
func (t *HTTPTransport) GetType() string {
	return t.config.Type
}

// Config returns the provider's configuration.
func (t *HTTPTransport) Config() ProviderConfig {
	return t.config
}

// IsHealthy returns the current health status.
func (t *HTTPTransport) IsHealthy() bool {
	t.healthMu.RLock()
	defer t.healthMu.RUnlock()
	return t.health.IsHealthy
}

// GetHealth returns detailed health information.
func (t *HTTPTransport) GetHealth() ProviderHealth {
	t.healthMu.RLock()
	defer t.healthMu.RUnlock()
	return t.health
}

// APIKey resolves the credential for the next attempt.
func (t *HTTPTransport) APIKey(ctx context.Context) (string, error) {
	key, err := t.credentials.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve api key for %q: %w", t.config.Name, err)
	}
	if key == "" {
		return "", &ConfigError{Provider: t.config.Name, Field: "api_key", Message: "API key is empty"}
	}
	return key, nil
}

// Do performs one HTTP exchange. A 2xx answer returns the body; any other
// status returns a *StatusError carrying the (bounded) body and the parsed
// Retry-After header. Transport faults are returned unwrapped apart from
// the *url.Error added by net/http.
func (t *HTTPTransport) Do(ctx context.Context, method, url string, body []byte, headers map[string]string) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("sending request to provider",
		"provider", t.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return io.ReadAll(resp.Body)
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	se := &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(errorBody),
	}
	se.RetryAfter, se.HasRetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	return nil, se
}

// DoJSON marshals reqBody, performs one POST-style exchange and decodes a
// 2xx answer into respBody. Decode failures are returned as *ParseError.
func (t *HTTPTransport) DoJSON(ctx context.Context, method, url string, reqBody, respBody any, headers map[string]string) error {
	var bodyBytes []byte
	if reqBody != nil {
		var err error
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	responseBytes, err := t.Do(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    t.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// Close stops the health checker and closes idle connections.
func (t *HTTPTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.stopHealthCheck)

		t.healthMu.RLock()
		started := t.started
		t.healthMu.RUnlock()

		if started {
			select {
			case <-t.healthCheckStopped:
				slog.Debug("health checker stopped", "provider", t.config.Name)
			case <-time.After(5 * time.Second):
				slog.Warn("health checker did not stop in time", "provider", t.config.Name)
			}
		}

		t.client.CloseIdleConnections()
		slog.Info("provider closed", "provider", t.config.Name)
	})
	return nil
}

// BearerHeaders returns the standard JSON + bearer token headers.
func BearerHeaders(apiKey string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + apiKey,
		"Content-Type":  "application/json",
	}
}

// JoinURL appends path to base without doubling slashes.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// parseRetryAfter parses a Retry-After value in delay-seconds or HTTP-date
// form. ok is false when the header is missing, negative or unparseable; a
// date in the past means "retry now" and yields zero with ok set.
func parseRetryAfter(header string, now time.Time) (d time.Duration, ok bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}

	if t, err := http.ParseTime(header); err == nil {
		return max(t.Sub(now), 0), true
	}
	return 0, false
}
