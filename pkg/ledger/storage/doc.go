// Package storage provides ledger.Storage backends.
//
// MemoryStorage keeps records in process memory and is meant for tests and
// short-lived runs. SQLiteStorage persists records in a single SQLite file
// and can run on either the pure-Go driver ("sqlite") or the cgo driver
// ("sqlite3"). Open picks a backend from config.LedgerConfig.
package storage
