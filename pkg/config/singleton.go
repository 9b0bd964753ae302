package config

import (
	"fmt"
	"sync/atomic"
)

// current is the process-wide configuration. The CLI stores it once at
// startup and the file watcher swaps it on every successful reload.
var current atomic.Pointer[Config]

// GetConfig returns the active configuration, or nil if none was stored.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig makes cfg the active configuration.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path and, only when it parses and validates, makes it
// the active configuration.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("reload %s: %w", path, err)
	}
	current.Store(cfg)
	return cfg, nil
}
