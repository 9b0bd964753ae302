package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
)

// Redactor masks credentials in log attributes.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
)

var defaultPatterns = []redactPattern{
	// OpenAI and DeepSeek keys share the sk- prefix
	{PatternAPIKey, regexp.MustCompile(`sk-[A-Za-z0-9_\-]{4,}`), "sk-***"},
	{PatternBearerToken, regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`), "Bearer ***"},
	{PatternPassword, regexp.MustCompile(`(password|passwd|pwd)[:=]\s*\S+`), "$1: ***"},
}

var sensitiveKeys = []string{
	"password", "passwd", "secret",
	"api_key", "apikey", "authorization",
}

// NewRedactor creates a Redactor with the built-in and custom patterns.
func NewRedactor(custom []config.RedactPattern) (*Redactor, error) {
	r := &Redactor{patterns: append([]redactPattern(nil), defaultPatterns...)}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p.Name, err)
		}
		r.patterns = append(r.patterns, redactPattern{p.Name, regex, p.Replacement})
	}

	return r, nil
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. Attributes with a
// sensitive key are replaced wholesale; string and error values are scanned
// for credentials.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, "***")
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}
	return a
}

// isSensitiveKey matches credential-like keys. Token counters such as
// total_tokens are not sensitive.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if lower == "token" || strings.HasSuffix(lower, "_token") {
		return true
	}
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
