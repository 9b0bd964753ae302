// Package retention prunes old ledger records, either on demand through
// Pruner or on a cron schedule through Scheduler.
package retention
