package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid JSON config", Config{Level: "info", Format: "json", RedactSecrets: true}, false},
		{"valid text config", Config{Level: "debug", Format: "text"}, false},
		{"defaults", Config{}, false},
		{"invalid log level", Config{Level: "invalid"}, true},
		{"invalid format", Config{Format: "console"}, true},
		{"invalid pattern", Config{RedactSecrets: true, RedactPatterns: []config.RedactPattern{{Name: "x", Pattern: "("}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, line)
	}
	buf.Reset()
	return entry
}

func TestLogger_RequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	logger.With("provider", "deepseek").InfoContext(ctx, "attempt", "attempt", 2)

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-123" || entry["provider"] != "deepseek" || entry["attempt"] != float64(2) {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{
		Writer:        &buf,
		RedactSecrets: true,
		RedactPatterns: []config.RedactPattern{
			{Name: "email", Pattern: `[a-z]+@example\.com`, Replacement: "<email>"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("upstream call",
		"api_key", "sk-abcdef123456",
		"error", errors.New("401 for key sk-abcdef123456"),
		"header", "Bearer abc.def",
		"owner", "ops@example.com",
		"status", 401,
	)

	entry := decodeLine(t, &buf)
	if entry["api_key"] != "***" {
		t.Errorf("api_key not masked: %v", entry["api_key"])
	}
	if entry["error"] != "401 for key sk-***" {
		t.Errorf("error not redacted: %v", entry["error"])
	}
	if entry["header"] != "Bearer ***" {
		t.Errorf("bearer not redacted: %v", entry["header"])
	}
	if entry["owner"] != "<email>" {
		t.Errorf("custom pattern not applied: %v", entry["owner"])
	}
	if entry["status"] != float64(401) {
		t.Errorf("numeric attribute changed: %v", entry["status"])
	}
}

func TestLogger_NoRedactionWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Writer: &buf})

	logger.Info("m", "key", "sk-abcdef123456")
	if entry := decodeLine(t, &buf); entry["key"] != "sk-abcdef123456" {
		t.Errorf("unexpected redaction: %v", entry["key"])
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Level: "warn", Writer: &buf})
	child := logger.With("component", "client")

	child.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn, got %s", buf.String())
	}

	if err := logger.SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	child.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("level change did not reach derived logger: %q", buf.String())
	}
	if logger.Level() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", logger.Level())
	}

	if err := logger.SetLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.LoggingConfig{Level: "error", Format: "text", RedactSecrets: true})
	if cfg.Level != "error" || cfg.Format != "text" || !cfg.RedactSecrets {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := map[string]bool{
		"api_key":       true,
		"Authorization": true,
		"access_token":  true,
		"token":         true,
		"total_tokens":  false,
		"provider":      false,
	}
	for key, want := range tests {
		if got := isSensitiveKey(key); got != want {
			t.Errorf("isSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}
