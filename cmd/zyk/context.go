package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/cli"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger/storage"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providerfactory"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/secrets"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/telemetry/logging"
)

// commandContext carries the persistent flags and the lazily loaded
// configuration shared by every subcommand.
type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// ensureConfig loads the configuration once, applies --verbose and
// publishes it as the process-wide configuration.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := c.configPath()
		cfg, err := config.LoadConfigWithEnvOverrides(path)
		if err != nil {
			c.configErr = configError(path, err)
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Telemetry.Logging.Level = "debug"
		}
		config.SetConfig(cfg)
		c.config = cfg
	})
	return c.config, c.configErr
}

// setupLogging installs the configured logger as the slog default.
func (c *commandContext) setupLogging(cfg *config.Config, w io.Writer) (*logging.Logger, error) {
	logCfg := logging.FromConfig(cfg.Telemetry.Logging)
	logCfg.Writer = w
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Logger)
	return logger, nil
}

func configError(path string, err error) error {
	field := path
	if field == "" {
		field = "environment"
	}
	return cli.NewConfigError(field, err.Error())
}

// newSecretsManager builds the secret sources named by the secrets section:
// the environment first, then the optional file directory.
func newSecretsManager(cfg config.SecretsConfig) (*secrets.Manager, error) {
	sources := []secrets.Source{secrets.NewEnvSource(cfg.EnvPrefix)}
	if cfg.FileDir != "" {
		files, err := secrets.NewFileSource(cfg.FileDir, cfg.Watch)
		if err != nil {
			return nil, cli.NewConfigError("secrets.file_dir", err.Error())
		}
		sources = append(sources, files)
	}
	return secrets.NewManager(cfg.CacheTTL, sources...), nil
}

// newTransport creates the configured transport. A ${secret:name} API key is
// resolved through mgr on every attempt so rotated keys take effect without
// a restart. With healthCheck set the background check is started and runs
// until ctx ends.
func newTransport(ctx context.Context, cfg *config.Config, mgr *secrets.Manager, healthCheck bool) (providers.Transport, error) {
	tc := cfg.Provider.TransportConfig()
	if secrets.IsReference(tc.APIKey) {
		tc.Credentials = mgr.Credential(tc.APIKey)
		tc.APIKey = ""
	}

	var (
		transport providers.Transport
		err       error
	)
	if healthCheck {
		transport, err = providerfactory.NewTransportWithHealthCheck(ctx, tc)
	} else {
		transport, err = providerfactory.NewTransport(tc)
	}
	if err != nil {
		var pce *providers.ConfigError
		if errors.As(err, &pce) {
			return nil, cli.NewConfigError("provider."+pce.Field, pce.Message)
		}
		return nil, err
	}
	return transport, nil
}

// openLedger opens the ledger storage, or returns nil when it is disabled.
func openLedger(cfg *config.Config) (ledger.Storage, error) {
	if !cfg.Ledger.Enabled {
		return nil, nil
	}
	store, err := storage.Open(cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return store, nil
}
