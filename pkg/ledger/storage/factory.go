package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger"
)

// Open creates the storage backend selected by the ledger section.
func Open(cfg config.LedgerConfig) (ledger.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil

	case "sqlite", "":
		if dir := filepath.Dir(cfg.Path); dir != "." && cfg.Path != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, ledger.NewStorageError("sqlite", "mkdir", err)
			}
		}
		sc := DefaultSQLiteConfig(cfg.Path)
		if cfg.Driver != "" {
			sc.Driver = cfg.Driver
		}
		return NewSQLiteStorage(sc)

	default:
		return nil, fmt.Errorf("unsupported ledger backend %q", cfg.Backend)
	}
}
