package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger"
)

// Config controls ledger retention.
type Config struct {
	// RetentionDays is how long records are kept. Zero keeps them forever.
	RetentionDays int

	// PruneSchedule is a standard five-field cron expression.
	// Empty disables scheduled pruning.
	PruneSchedule string
}

// Pruner deletes ledger records older than the retention window.
type Pruner struct {
	storage ledger.Storage
	config  Config
	now     func() time.Time
	logger  *slog.Logger
}

// NewPruner creates a pruner for storage.
func NewPruner(storage ledger.Storage, config Config) *Pruner {
	return &Pruner{
		storage: storage,
		config:  config,
		now:     time.Now,
		logger:  slog.Default().With("component", "ledger.pruner"),
	}
}

// Cutoff returns the oldest timestamp that survives pruning, or the zero
// time when retention is disabled.
func (p *Pruner) Cutoff() time.Time {
	if p.config.RetentionDays <= 0 {
		return time.Time{}
	}
	return p.now().UTC().AddDate(0, 0, -p.config.RetentionDays)
}

// Prune removes expired records and returns how many were deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.Cutoff()
	if cutoff.IsZero() {
		return 0, nil
	}

	start := time.Now()
	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune ledger: %w", err)
	}

	p.logger.Info("ledger pruned",
		"cutoff", cutoff.Format(time.RFC3339),
		"deleted", deleted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return deleted, nil
}
