// Package ledger records one entry per completion call: which provider and
// model served it, how many attempts it took, how it ended and the token
// usage the upstream reported.
//
// Prompts and completions are never stored; a SHA-256 hash of the prompt is
// kept so repeated prompts can be correlated.
//
// Subpackages:
//   - storage: memory and SQLite backends (pure-Go "sqlite" or cgo "sqlite3")
//   - recorder: asynchronous writer used on the request path
//   - retention: cron-scheduled pruning of old entries
//   - export: JSON and CSV writers for the usage command
package ledger
