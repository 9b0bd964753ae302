package config

import (
	"strings"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBodyBytes    = 1048576
	DefaultCORSMaxAge      = 3600

	// Provider defaults
	DefaultProviderType         = "deepseek"
	DefaultProviderTimeout      = 60 * time.Second
	DefaultMaxIdleConns         = 100
	DefaultMaxIdleConnsPerHost  = 10
	DefaultIdleConnTimeout      = 90 * time.Second
	DefaultHealthCheckInterval  = providers.DefaultHealthCheckInterval
	DefaultProviderHealthChecks = true

	// Secrets defaults
	DefaultSecretsEnvPrefix = "ZYK_SECRET_"
	DefaultSecretsCacheTTL  = 5 * time.Minute

	// Ledger defaults
	DefaultLedgerEnabled           = true
	DefaultLedgerBackend           = "sqlite"
	DefaultLedgerDriver            = "sqlite"
	DefaultLedgerPath              = "data/ledger.db"
	DefaultLedgerBufferSize        = 1000
	DefaultLedgerRetentionDays     = 30
	DefaultLedgerRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "zyk"
)

// DefaultConfig returns a configuration with every field at its default.
// Files are decoded on top of it, so settings that are absent keep their
// defaults while explicit zero values (max_retries: 0, temperature: 0)
// are preserved.
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORS: CORSConfig{Enabled: true},
		},
		Provider: ProviderConfig{
			HealthCheck: DefaultProviderHealthChecks,
		},
		Retry: RetryConfig{
			MaxRetries: providers.DefaultMaxRetries,
			Jitter:     providers.DefaultJitter,
		},
		Defaults: DefaultsConfig{
			Temperature: providers.DefaultTemperature,
			MaxTokens:   providers.DefaultMaxTokens,
		},
		Ledger: LedgerConfig{
			Enabled:       DefaultLedgerEnabled,
			RetentionDays: DefaultLedgerRetentionDays,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactSecrets: true},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Provider defaults
	if cfg.Provider.Type == "" {
		cfg.Provider.Type = DefaultProviderType
	}
	cfg.Provider.Type = strings.ToLower(cfg.Provider.Type)
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = DefaultProviderTimeout
	}
	if cfg.Provider.HealthCheckInterval == 0 {
		cfg.Provider.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if cfg.Provider.MaxIdleConns == 0 {
		cfg.Provider.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Provider.MaxIdleConnsPerHost == 0 {
		cfg.Provider.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.Provider.IdleConnTimeout == 0 {
		cfg.Provider.IdleConnTimeout = DefaultIdleConnTimeout
	}

	// Retry defaults. MaxRetries and Jitter stay untouched: zero disables them.
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = providers.DefaultBaseDelay
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = providers.DefaultMaxDelay
	}
	if cfg.Retry.AttemptTimeout == 0 {
		cfg.Retry.AttemptTimeout = providers.DefaultAttemptTimeout
	}
	if cfg.Retry.MaxElapsed == 0 {
		cfg.Retry.MaxElapsed = providers.DefaultMaxElapsed
	}

	if cfg.Defaults.MaxTokens == 0 {
		cfg.Defaults.MaxTokens = providers.DefaultMaxTokens
	}

	// Secrets defaults
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.CacheTTL == 0 {
		cfg.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}

	// Ledger defaults
	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = DefaultLedgerBackend
	}
	if cfg.Ledger.Driver == "" {
		cfg.Ledger.Driver = DefaultLedgerDriver
	}
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = DefaultLedgerPath
	}
	if cfg.Ledger.BufferSize == 0 {
		cfg.Ledger.BufferSize = DefaultLedgerBufferSize
	}
	if cfg.Ledger.RetentionSchedule == "" {
		cfg.Ledger.RetentionSchedule = DefaultLedgerRetentionSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID", "Retry-After"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
