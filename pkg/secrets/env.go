package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvSource reads secrets from environment variables.
//
// A secret name is upper-cased, '-' and '.' become '_', and Prefix is
// prepended: with prefix "ZYK_SECRET_", "deepseek-api-key" is read from
// ZYK_SECRET_DEEPSEEK_API_KEY.
type EnvSource struct {
	Prefix string
}

// NewEnvSource creates an environment source with the given prefix.
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{Prefix: prefix}
}

// Lookup implements Source.
func (s *EnvSource) Lookup(_ context.Context, name string) (string, error) {
	envVar := s.envVar(name)

	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("%w in environment: %s (env var: %s)", ErrNotFound, name, envVar)
	}
	return value, nil
}

// Name implements Source.
func (s *EnvSource) Name() string {
	return "env"
}

func (s *EnvSource) envVar(name string) string {
	replacer := strings.NewReplacer("-", "_", ".", "_")
	return s.Prefix + strings.ToUpper(replacer.Replace(name))
}
