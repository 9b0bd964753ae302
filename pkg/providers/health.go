package providers

import (
	"context"
	"log/slog"
	"time"
)

// DefaultHealthCheckInterval is used when the config leaves it unset.
const DefaultHealthCheckInterval = 30 * time.Second

// StartHealthChecker starts a background goroutine that periodically runs
// check and records the result. The checker only feeds IsHealthy/GetHealth;
// completion calls never read or write this state.
//
// The health checker runs until the transport is closed or ctx is cancelled.
// It backs off while the upstream is unhealthy to reduce load.
func (t *HTTPTransport) StartHealthChecker(ctx context.Context, check func(context.Context) error) {
	t.checkerOnce.Do(func() {
		t.healthMu.Lock()
		t.started = true
		t.healthMu.Unlock()

		go t.runHealthChecker(ctx, check)
	})
}

func (t *HTTPTransport) runHealthChecker(ctx context.Context, check func(context.Context) error) {
	defer close(t.healthCheckStopped)

	interval := t.config.HealthCheckInterval
	if interval <= 0 {
		interval = DefaultHealthCheckInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("health checker started",
		"provider", t.config.Name,
		"interval", interval,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("health checker stopped (context cancelled)", "provider", t.config.Name)
			return

		case <-t.stopHealthCheck:
			slog.Debug("health checker stopped (provider closed)", "provider", t.config.Name)
			return

		case <-ticker.C:
			t.performHealthCheck(ctx, check)

			if !t.IsHealthy() {
				health := t.GetHealth()
				next := calculateBackoff(health.ConsecutiveFailures, interval)
				ticker.Reset(next)

				slog.Debug("health check backoff",
					"provider", t.config.Name,
					"consecutive_failures", health.ConsecutiveFailures,
					"next_check_in", next,
				)
			} else {
				ticker.Reset(interval)
			}
		}
	}
}

// performHealthCheck executes a single health check.
func (t *HTTPTransport) performHealthCheck(ctx context.Context, check func(context.Context) error) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	err := check(checkCtx)
	latency := time.Since(start)

	previous := t.GetHealth()
	t.recordHealth(err)

	if err != nil {
		slog.Error("health check failed",
			"provider", t.config.Name,
			"error", err,
			"latency", latency,
		)
		return
	}

	slog.Debug("health check passed",
		"provider", t.config.Name,
		"latency", latency,
	)
	if previous.ConsecutiveFailures > 0 {
		slog.Info("provider marked healthy",
			"provider", t.config.Name,
			"previous_failures", previous.ConsecutiveFailures,
		)
	}
}

// recordHealth updates the health status after a check.
func (t *HTTPTransport) recordHealth(err error) {
	t.healthMu.Lock()
	defer t.healthMu.Unlock()

	t.health.LastCheck = time.Now()

	if err == nil {
		t.health.IsHealthy = true
		t.health.ConsecutiveFailures = 0
		t.health.LastError = nil
		return
	}

	t.health.ConsecutiveFailures++
	t.health.LastError = err

	// Mark unhealthy after 3 consecutive failures
	if t.health.ConsecutiveFailures >= 3 && t.health.IsHealthy {
		t.health.IsHealthy = false
		slog.Warn("provider marked unhealthy",
			"provider", t.config.Name,
			"consecutive_failures", t.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// calculateBackoff calculates the check interval based on consecutive failures.
// It doubles per failure, capped at 10x the base interval and 5 minutes.
func calculateBackoff(consecutiveFailures int, baseInterval time.Duration) time.Duration {
	if consecutiveFailures <= 0 {
		return baseInterval
	}

	multiplier := 10
	if consecutiveFailures < 4 {
		multiplier = 1 << uint(consecutiveFailures)
	}

	backoff := baseInterval * time.Duration(multiplier)
	if maxBackoff := 5 * time.Minute; backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}
