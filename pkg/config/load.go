package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "ZYK_"

// LoadConfig loads configuration from a YAML or TOML file at the specified
// path. The format is chosen by extension (.toml, otherwise YAML). It applies
// default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data, formatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Format names a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

func formatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Parse decodes data on top of DefaultConfig and applies defaults to any
// fields the document zeroed. It does not validate.
//
// TOML documents are converted to YAML first so that both formats share the
// yaml struct tags and the duration syntax ("30s", "5m").
func Parse(data []byte, format Format) (*Config, error) {
	if format == FormatTOML {
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		converted, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert TOML document: %w", err)
		}
		data = converted
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a file and applies
// environment variable overrides. Environment variables follow the naming
// convention ZYK_SECTION_FIELD (e.g., ZYK_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults.
//
// The loading sequence is:
// 1. Load from file (or defaults)
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data, formatFromPath(path))
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Malformed numeric, boolean or duration values are reported
// as a ValidationError rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	o := envOverrides{}

	// Server overrides
	o.str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	o.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	o.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	o.duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	o.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	o.duration("SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	o.boolean("SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)

	// Provider overrides
	o.str("PROVIDER_TYPE", &cfg.Provider.Type)
	o.str("PROVIDER_NAME", &cfg.Provider.Name)
	o.str("PROVIDER_BASE_URL", &cfg.Provider.BaseURL)
	o.str("PROVIDER_API_KEY", &cfg.Provider.APIKey)
	o.str("PROVIDER_ORGANIZATION", &cfg.Provider.Organization)
	o.str("PROVIDER_MODEL", &cfg.Provider.Model)
	o.duration("PROVIDER_TIMEOUT", &cfg.Provider.Timeout)
	o.boolean("PROVIDER_HEALTH_CHECK", &cfg.Provider.HealthCheck)

	// The conventional vendor variables fill an empty key for their type.
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = vendorAPIKey(cfg.Provider.Type)
	}

	// Retry overrides
	o.integer("RETRY_MAX_RETRIES", &cfg.Retry.MaxRetries)
	o.duration("RETRY_BASE_DELAY", &cfg.Retry.BaseDelay)
	o.duration("RETRY_MAX_DELAY", &cfg.Retry.MaxDelay)
	o.duration("RETRY_JITTER", &cfg.Retry.Jitter)
	o.duration("RETRY_ATTEMPT_TIMEOUT", &cfg.Retry.AttemptTimeout)
	o.duration("RETRY_MAX_ELAPSED", &cfg.Retry.MaxElapsed)

	// Request defaults
	o.float("DEFAULTS_TEMPERATURE", &cfg.Defaults.Temperature)
	o.integer("DEFAULTS_MAX_TOKENS", &cfg.Defaults.MaxTokens)

	// Secrets overrides
	o.str("SECRETS_FILE_DIR", &cfg.Secrets.FileDir)
	o.boolean("SECRETS_WATCH", &cfg.Secrets.Watch)

	// Ledger overrides
	o.boolean("LEDGER_ENABLED", &cfg.Ledger.Enabled)
	o.str("LEDGER_BACKEND", &cfg.Ledger.Backend)
	o.str("LEDGER_DRIVER", &cfg.Ledger.Driver)
	o.str("LEDGER_PATH", &cfg.Ledger.Path)
	o.integer("LEDGER_RETENTION_DAYS", &cfg.Ledger.RetentionDays)
	o.str("LEDGER_RETENTION_SCHEDULE", &cfg.Ledger.RetentionSchedule)

	// Telemetry overrides
	o.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	o.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	o.boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)

	o.str("LOCK_FILE", &cfg.LockFile)

	if len(o.errs) > 0 {
		return ValidationError{Errors: o.errs}
	}
	return nil
}

func vendorAPIKey(providerType string) string {
	switch strings.ToLower(providerType) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "deepseek", "":
		return os.Getenv("DEEPSEEK_API_KEY")
	}
	return ""
}

// envOverrides reads ZYK_* variables and collects parse failures.
type envOverrides struct {
	errs []FieldError
}

func (o *envOverrides) lookup(name string) (string, bool) {
	val, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (o *envOverrides) fail(name, val, kind string) {
	o.errs = append(o.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("invalid %s %q", kind, val),
	})
}

func (o *envOverrides) str(name string, dst *string) {
	if val, ok := o.lookup(name); ok {
		*dst = val
	}
}

func (o *envOverrides) duration(name string, dst *time.Duration) {
	if val, ok := o.lookup(name); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			o.fail(name, val, "duration")
			return
		}
		*dst = d
	}
}

func (o *envOverrides) integer(name string, dst *int) {
	if val, ok := o.lookup(name); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			o.fail(name, val, "integer")
			return
		}
		*dst = i
	}
}

func (o *envOverrides) float(name string, dst *float64) {
	if val, ok := o.lookup(name); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			o.fail(name, val, "number")
			return
		}
		*dst = f
	}
}

func (o *envOverrides) boolean(name string, dst *bool) {
	if val, ok := o.lookup(name); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			o.fail(name, val, "boolean")
			return
		}
		*dst = b
	}
}
