// Package secrets resolves ${secret:name} references from the environment
// and from a directory of secret files.
//
// Sources are consulted in order; the first one that knows a name wins.
// Resolved values are cached for a configurable TTL, and the file source can
// watch its directory so rotated keys are picked up without a restart.
//
// The manager can hand out a providers.CredentialSource for a configured API
// key. The source is consulted on every upstream attempt, so a rotation that
// lands between retries is used by the next attempt.
//
// Example:
//
//	files, _ := secrets.NewFileSource("/run/secrets", true)
//	mgr := secrets.NewManager(5*time.Minute, secrets.NewEnvSource("ZYK_SECRET_"), files)
//	defer mgr.Close()
//
//	cfg.Credentials = mgr.Credential("${secret:deepseek_api_key}")
package secrets
