package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)

	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger"
)

// Driver names accepted by SQLiteConfig.Driver.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Driver is the database/sql driver name.
	// Default: "sqlite"
	Driver string

	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig(path string) SQLiteConfig {
	return SQLiteConfig{
		Driver:      DriverModernc,
		Path:        path,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStorage implements ledger.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and creates the schema.
func NewSQLiteStorage(config SQLiteConfig) (*SQLiteStorage, error) {
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.Driver != DriverModernc && config.Driver != DriverMattn {
		return nil, ledger.NewStorageError("sqlite", "open", fmt.Errorf("unsupported driver %q", config.Driver))
	}

	logger := slog.Default().With("component", "ledger.storage.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "open", err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY between
	// our own goroutines and keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &SQLiteStorage{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite ledger initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return ledger.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
			return ledger.NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return ledger.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return ledger.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return ledger.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return ledger.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store implements ledger.Storage.
func (s *SQLiteStorage) Store(ctx context.Context, r *ledger.Record) error {
	_, err := s.db.ExecContext(ctx, insertRecord,
		r.ID, nullString(r.RequestID), r.Timestamp.UnixMilli(), r.Provider, r.Model,
		r.Outcome, nullString(r.ErrorKind), r.StatusCode,
		r.Attempts, r.DurationMS, r.PromptHash,
		r.PromptTokens, r.CompletionTokens, r.TotalTokens, r.CacheHitTokens,
	)
	if err != nil {
		return ledger.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query implements ledger.Storage.
func (s *SQLiteStorage) Query(ctx context.Context, query *ledger.Query) ([]*ledger.Record, error) {
	where, args := buildWhere(query)

	stmt := "SELECT" + selectColumns + "FROM completions" + where + " ORDER BY ts DESC, id"
	if query != nil && (query.Limit > 0 || query.Offset > 0) {
		limit := query.Limit
		if limit <= 0 {
			limit = -1
		}
		stmt += " LIMIT ? OFFSET ?"
		args = append(args, limit, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*ledger.Record{}
	for rows.Next() {
		var (
			r         ledger.Record
			requestID sql.NullString
			errorKind sql.NullString
			ts        int64
		)
		if err := rows.Scan(
			&r.ID, &requestID, &ts, &r.Provider, &r.Model, &r.Outcome, &errorKind, &r.StatusCode,
			&r.Attempts, &r.DurationMS, &r.PromptHash,
			&r.PromptTokens, &r.CompletionTokens, &r.TotalTokens, &r.CacheHitTokens,
		); err != nil {
			return nil, ledger.NewStorageError("sqlite", "scan", err)
		}
		r.RequestID = requestID.String
		r.ErrorKind = errorKind.String
		r.Timestamp = time.UnixMilli(ts).UTC()
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Summarize implements ledger.Storage.
func (s *SQLiteStorage) Summarize(ctx context.Context, query *ledger.Query) ([]ledger.Summary, error) {
	where, args := buildWhere(query)

	stmt := `SELECT provider, model, COUNT(*),
        SUM(CASE WHEN outcome = 'error' THEN 1 ELSE 0 END),
        SUM(attempts), SUM(prompt_tokens), SUM(completion_tokens), SUM(total_tokens)
        FROM completions` + where + ` GROUP BY provider, model ORDER BY provider, model`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "summarize", err)
	}
	defer rows.Close()

	out := []ledger.Summary{}
	for rows.Next() {
		var sum ledger.Summary
		if err := rows.Scan(&sum.Provider, &sum.Model, &sum.Calls, &sum.Failures,
			&sum.Attempts, &sum.PromptTokens, &sum.CompletionTokens, &sum.TotalTokens); err != nil {
			return nil, ledger.NewStorageError("sqlite", "scan", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError("sqlite", "summarize", err)
	}
	return out, nil
}

// DeleteBefore implements ledger.Storage.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM completions WHERE ts < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "delete", err)
	}
	return n, nil
}

// Count implements ledger.Storage.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM completions").Scan(&n); err != nil {
		return 0, ledger.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// Close implements ledger.Storage.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return ledger.NewStorageError("sqlite", "close", err)
	}
	return nil
}

func buildWhere(q *ledger.Query) (string, []any) {
	if q == nil {
		return "", nil
	}

	var (
		clauses []string
		args    []any
	)
	if q.Provider != "" {
		clauses = append(clauses, "provider = ?")
		args = append(args, q.Provider)
	}
	if q.Model != "" {
		clauses = append(clauses, "model = ?")
		args = append(args, q.Model)
	}
	if q.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, q.Outcome)
	}
	if !q.Since.IsZero() {
		clauses = append(clauses, "ts >= ?")
		args = append(args, q.Since.UnixMilli())
	}
	if !q.Until.IsZero() {
		clauses = append(clauses, "ts < ?")
		args = append(args, q.Until.UnixMilli())
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
