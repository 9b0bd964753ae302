package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

// secretRefRegex matches ${secret:name} references.
var secretRefRegex = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// IsReference reports whether s contains a ${secret:name} reference.
func IsReference(s string) bool {
	return secretRefRegex.MatchString(s)
}

// Manager resolves secrets from an ordered list of sources with a TTL cache.
type Manager struct {
	sources []Source
	ttl     time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewManager creates a manager. A ttl of zero disables caching.
func NewManager(ttl time.Duration, sources ...Source) *Manager {
	m := &Manager{
		sources: sources,
		ttl:     ttl,
		cache:   make(map[string]cacheEntry),
	}

	for _, src := range sources {
		if fs, ok := src.(*FileSource); ok {
			fs.OnChange(m.clearCache)
		}
	}

	return m
}

// Get returns the named secret from the first source that holds it.
func (m *Manager) Get(ctx context.Context, name string) (string, error) {
	if value, ok := m.cached(name); ok {
		return value, nil
	}

	var errs []error
	for _, src := range m.sources {
		value, err := src.Lookup(ctx, name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				slog.Warn("secret source failed",
					"source", src.Name(),
					"name", redactSecretName(name),
					"error", err,
				)
			}
			errs = append(errs, err)
			continue
		}

		m.store(name, value)
		slog.Debug("secret resolved", "source", src.Name(), "name", redactSecretName(name))
		return value, nil
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("%w: %q (no sources configured)", ErrNotFound, name)
	}
	return "", fmt.Errorf("failed to get secret %q: %w", name, errors.Join(errs...))
}

// Resolve replaces every ${secret:name} reference in input. References that
// cannot be resolved are left in place and reported together.
func (m *Manager) Resolve(ctx context.Context, input string) (string, error) {
	var errs []error

	output := secretRefRegex.ReplaceAllStringFunc(input, func(match string) string {
		name := secretRefRegex.FindStringSubmatch(match)[1]
		value, err := m.Get(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return match
		}
		return value
	})

	if len(errs) > 0 {
		return output, fmt.Errorf("failed to resolve secret references: %w", errors.Join(errs...))
	}
	return output, nil
}

// Credential returns a CredentialSource for a configured key. A plain key is
// returned as a static key; a reference is resolved on every call.
func (m *Manager) Credential(value string) providers.CredentialSource {
	if !IsReference(value) {
		return providers.StaticKey(value)
	}
	return providers.CredentialFunc(func(ctx context.Context) (string, error) {
		return m.Resolve(ctx, value)
	})
}

// Refresh drops the manager cache and the caches of every source.
func (m *Manager) Refresh() {
	for _, src := range m.sources {
		if r, ok := src.(Refresher); ok {
			r.Refresh()
		}
	}
	m.clearCache()
}

// Close closes every source that holds resources.
func (m *Manager) Close() error {
	var errs []error
	for _, src := range m.sources {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) cached(name string) (string, bool) {
	if m.ttl <= 0 {
		return "", false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.cache[name]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (m *Manager) store(name, value string) {
	if m.ttl <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[name] = cacheEntry{value: value, expiresAt: time.Now().Add(m.ttl)}
}

func (m *Manager) clearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]cacheEntry)
}

// redactSecretName keeps the first and last two characters.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
