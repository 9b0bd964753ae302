package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/cli"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger/recorder"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger/retention"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/server"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/telemetry/logging"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/telemetry/metrics"
)

type runOptions struct {
	listenAddress string
	dryRun        bool
	noWatch       bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the completion server",
		Long: `Start the completion server with the specified configuration.

The server answers POST /v1/completions through the retrying client and
exposes /health, /ready and, when enabled, /metrics. Every completion is
written to the usage ledger. The configuration file is watched and retry
settings are applied without a restart.

Examples:
  # Start with defaults and DEEPSEEK_API_KEY from the environment
  zyk run

  # Start with a config file
  zyk run --config /etc/zyk/zyk.yaml

  # Override listen address
  zyk run --listen 0.0.0.0:8080

  # Validate config without starting the server
  zyk run --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewCommandError("run", runServer(cmd, ctx, opts))
		},
	}

	cmd.Flags().StringVarP(&opts.listenAddress, "listen", "l", "", "override listen address")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate config without starting the server")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "do not reload the config file on change")

	return cmd
}

func runServer(cmd *cobra.Command, cc *commandContext, opts runOptions) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	if opts.listenAddress != "" {
		cfg.Server.ListenAddress = opts.listenAddress
	}

	logger, err := cc.setupLogging(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	if cfg.LockFile != "" {
		unlock, err := acquireLock(cfg.LockFile)
		if err != nil {
			return err
		}
		defer unlock()
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	mgr, err := newSecretsManager(cfg.Secrets)
	if err != nil {
		return err
	}
	defer mgr.Close()

	transport, err := newTransport(ctx, cfg, mgr, cfg.Provider.HealthCheck)
	if err != nil {
		return err
	}
	defer transport.Close()
	fmt.Fprintf(out, "✓ Provider %s (%s, model %s)\n", transport.GetName(), transport.GetType(), transport.DefaultModel())

	clientOpts := []providers.ClientOption{providers.WithLogger(logger.Logger)}
	var serverOpts []server.Option

	if cfg.Telemetry.Metrics.Enabled {
		collector := metrics.NewCollector(cfg.Telemetry.Metrics, prometheus.NewRegistry())
		clientOpts = append(clientOpts, providers.WithObserver(collector))
		serverOpts = append(serverOpts, server.WithMetrics(collector))
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()

		rec := recorder.New(store, recorder.Config{
			BufferSize:   cfg.Ledger.BufferSize,
			WriteTimeout: recorder.DefaultConfig().WriteTimeout,
		})
		defer rec.Close()
		serverOpts = append(serverOpts, server.WithRecorder(rec))

		scheduler := retention.NewScheduler(retention.NewPruner(store, retention.Config{
			RetentionDays: cfg.Ledger.RetentionDays,
			PruneSchedule: cfg.Ledger.RetentionSchedule,
		}))
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start ledger retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
			if next := scheduler.NextRun(); next != nil {
				slog.Debug("ledger retention scheduler started", "next_run", next)
			}
		}
		fmt.Fprintf(out, "✓ Usage ledger (%s)\n", cfg.Ledger.Backend)
	}

	backend := server.NewBackend(transport, cfg, clientOpts...)
	srv := server.NewServer(cfg, backend, serverOpts...)

	if path := cc.configPath(); path != "" && !opts.noWatch {
		watcher, err := config.NewWatcher(path, logger.Logger, func(next *config.Config) {
			applyReload(logger, srv, next)
		})
		if err != nil {
			slog.Warn("configuration watcher disabled", "error", err)
		} else {
			defer watcher.Close()
			go func() {
				if err := watcher.Run(ctx); err != nil {
					slog.Error("configuration watcher stopped", "error", err)
				}
			}()
		}
	}

	go func() {
		select {
		case <-srv.Ready():
			addr := srv.Addr().String()
			fmt.Fprintf(out, "✓ Server listening on %s\n", addr)
			fmt.Fprintf(out, "  Completions: POST http://%s/v1/completions\n", addr)
			if cfg.Telemetry.Metrics.Enabled {
				fmt.Fprintf(out, "  Metrics:     http://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
			}
		case <-ctx.Done():
		}
	}()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// applyReload takes the new log level and hands the rest to the server.
func applyReload(logger *logging.Logger, srv *server.Server, next *config.Config) {
	if err := logger.SetLevel(next.Telemetry.Logging.Level); err != nil {
		slog.Warn("ignoring reloaded log level", "error", err)
	}
	srv.Reload(next)
}

// acquireLock takes the single-instance lock at path.
func acquireLock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another zyk server already holds %s", path)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release lock", "path", path, "error", err)
		}
	}, nil
}
