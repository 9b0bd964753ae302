package config

import "time"

// Config is the root configuration structure for the zyk completion service.
// It contains the inbound server, the upstream provider, the retry policy,
// request defaults, secret sources, the usage ledger and telemetry.
type Config struct {
	// Server contains inbound HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Provider selects and configures the single upstream chat-completion API.
	Provider ProviderConfig `yaml:"provider"`

	// Retry contains the retry policy applied to every completion call.
	Retry RetryConfig `yaml:"retry"`

	// Defaults contains request parameters used when a caller omits them.
	Defaults DefaultsConfig `yaml:"defaults"`

	// Secrets configures where ${secret:name} references are resolved from.
	Secrets SecretsConfig `yaml:"secrets"`

	// Ledger configures the usage ledger that records every completion call.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// LockFile is the path of the advisory lock held while the server runs.
	// An empty value disables locking.
	// Default: "" (disabled)
	LockFile string `yaml:"lock_file"`
}

// ServerConfig contains configuration for the inbound HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout must cover a full retry sequence, so it defaults higher
	// than the read timeout.
	// Default: 5m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds one inbound completion request including all
	// retries. Zero means the request is bounded only by the client.
	// Default: 0
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the request body of POST /v1/completions.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// Default: ["X-Request-ID", "Retry-After"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// ProviderConfig configures the upstream chat-completion API.
type ProviderConfig struct {
	// Type selects the transport variant.
	// Options: "deepseek", "openai"
	// Default: "deepseek"
	Type string `yaml:"type"`

	// Name identifies the provider in logs, metrics and the ledger.
	// Default: the value of Type
	Name string `yaml:"name"`

	// BaseURL overrides the public endpoint of the selected type.
	// Default: "" (variant default)
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates every attempt. It may be a ${secret:name}
	// reference; if empty, DEEPSEEK_API_KEY or OPENAI_API_KEY is used.
	APIKey string `yaml:"api_key"`

	// Organization is sent as OpenAI-Organization (openai only).
	Organization string `yaml:"organization"`

	// Model is used when a request does not name one.
	// Default: "" (variant default: deepseek-chat or gpt-3.5-turbo)
	Model string `yaml:"model"`

	// Timeout is the HTTP client timeout for one attempt.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// HealthCheckInterval is the period of the background health check.
	// Default: 30s
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`

	// HealthCheck enables the background health check.
	// Default: true
	HealthCheck bool `yaml:"health_check"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum number of idle connections per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle connection stays in the pool.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// RetryConfig configures the retry policy.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero disables retrying.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// BaseDelay is the first backoff step.
	// Default: 1s
	BaseDelay time.Duration `yaml:"base_delay"`

	// MaxDelay caps every computed wait.
	// Default: 10s
	MaxDelay time.Duration `yaml:"max_delay"`

	// Jitter is the upper bound of the random component of each wait.
	// Default: 1s
	Jitter time.Duration `yaml:"jitter"`

	// AttemptTimeout bounds a single attempt.
	// Default: 30s
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`

	// MaxElapsed is the overall retry budget of one call, measured from the
	// first attempt. A wait that would end past it stops retrying.
	// Default: 15m
	MaxElapsed time.Duration `yaml:"max_elapsed"`
}

// DefaultsConfig holds request parameters applied when a caller omits them.
type DefaultsConfig struct {
	// Default: 0.7
	Temperature float64 `yaml:"temperature"`

	// Default: 500
	MaxTokens int `yaml:"max_tokens"`
}

// SecretsConfig configures secret resolution.
type SecretsConfig struct {
	// EnvPrefix is prepended to secret names looked up in the environment.
	// Default: "ZYK_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// FileDir is a directory containing one file per secret.
	// Empty disables the file source.
	FileDir string `yaml:"file_dir"`

	// Watch reloads file secrets when the directory changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// CacheTTL bounds how long a resolved secret is reused.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LedgerConfig configures the usage ledger.
type LedgerConfig struct {
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Driver selects the database/sql driver for the sqlite backend.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file.
	// Default: "data/ledger.db"
	Path string `yaml:"path"`

	// BufferSize is the capacity of the async recorder queue.
	// Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// RetentionDays deletes records older than this. Zero keeps everything.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// RetentionSchedule is the cron expression for pruning.
	// Default: "0 3 * * *"
	RetentionSchedule string `yaml:"retention_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks API keys and bearer tokens in log attributes.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "zyk"
	Namespace string `yaml:"namespace"`
}
