// Package config provides configuration management for the zyk completion
// service.
//
// Configuration is read from a YAML or TOML file (chosen by extension),
// decoded on top of built-in defaults, overridden from the environment and
// validated.
//
// # Configuration Loading
//
//  1. From a file only:
//     cfg, err := config.LoadConfig("zyk.yaml")
//
//  2. From a file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("zyk.toml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ZYK_SECTION_FIELD:
//
//   - ZYK_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - ZYK_PROVIDER_TYPE overrides provider.type
//   - ZYK_RETRY_MAX_RETRIES overrides retry.max_retries
//   - ZYK_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// When provider.api_key is still empty, DEEPSEEK_API_KEY or OPENAI_API_KEY
// is used depending on provider.type.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher reloads the file when it changes and hands the new configuration
// to a callback. A file that fails validation is ignored.
//
// # Example Configuration
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	provider:
//	  type: deepseek
//	  api_key: "${secret:deepseek_api_key}"
//
//	retry:
//	  max_retries: 3
//	  base_delay: 1s
//	  max_delay: 10s
//	  jitter: 1s
//
//	ledger:
//	  backend: sqlite
//	  path: data/ledger.db
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
