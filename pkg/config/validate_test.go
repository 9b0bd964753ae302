package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"bad listen address", func(c *Config) { c.Server.ListenAddress = "8080" }, "server.listen_address"},
		{"negative request timeout", func(c *Config) { c.Server.RequestTimeout = -time.Second }, "server.request_timeout"},
		{"unsupported type", func(c *Config) { c.Provider.Type = "anthropic" }, "provider.type"},
		{"relative base url", func(c *Config) { c.Provider.BaseURL = "api.deepseek.com" }, "provider.base_url"},
		{"negative retries", func(c *Config) { c.Retry.MaxRetries = -1 }, "retry.max_retries"},
		{"base above max", func(c *Config) { c.Retry.BaseDelay = time.Minute }, "retry.base_delay"},
		{"negative jitter", func(c *Config) { c.Retry.Jitter = -time.Millisecond }, "retry.jitter"},
		{"negative max elapsed", func(c *Config) { c.Retry.MaxElapsed = -time.Second }, "retry.max_elapsed"},
		{"temperature too high", func(c *Config) { c.Defaults.Temperature = 2.5 }, "defaults.temperature"},
		{"zero max tokens", func(c *Config) { c.Defaults.MaxTokens = 0 }, "defaults.max_tokens"},
		{"unknown backend", func(c *Config) { c.Ledger.Backend = "postgres" }, "ledger.backend"},
		{"unknown driver", func(c *Config) { c.Ledger.Driver = "pgx" }, "ledger.driver"},
		{"bad cron", func(c *Config) { c.Ledger.RetentionSchedule = "every night" }, "ledger.retention_schedule"},
		{"disabled ledger skips checks", func(c *Config) { c.Ledger.Enabled = false; c.Ledger.Backend = "postgres" }, ""},
		{"bad level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"bad redact pattern", func(c *Config) {
			c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "x", Pattern: "("}}
		}, "telemetry.logging.redact_patterns[0].pattern"},
		{"metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verr)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if single.Error() != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if !strings.Contains(multi.Error(), "2 errors") || !strings.Contains(multi.Error(), "  - b: worse") {
		t.Errorf("unexpected message %q", multi.Error())
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != first.Server.ListenAddress || cfg.Retry.BaseDelay != first.Retry.BaseDelay {
		t.Error("ApplyDefaults is not idempotent")
	}
	if cfg.Retry.MaxRetries != 0 {
		t.Errorf("ApplyDefaults must not touch max_retries, got %d", cfg.Retry.MaxRetries)
	}
}
