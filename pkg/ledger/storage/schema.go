package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the ledger tables. Timestamps are Unix milliseconds so both
// sqlite drivers read them back identically.
const Schema = `
CREATE TABLE IF NOT EXISTS completions (
    id TEXT PRIMARY KEY,
    request_id TEXT,
    ts INTEGER NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    outcome TEXT NOT NULL,
    error_kind TEXT,
    status_code INTEGER,
    attempts INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    prompt_hash TEXT NOT NULL,
    prompt_tokens INTEGER NOT NULL DEFAULT 0,
    completion_tokens INTEGER NOT NULL DEFAULT 0,
    total_tokens INTEGER NOT NULL DEFAULT 0,
    cache_hit_tokens INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_completions_ts ON completions(ts);
CREATE INDEX IF NOT EXISTS idx_completions_provider_model ON completions(provider, model);
CREATE INDEX IF NOT EXISTS idx_completions_request_id ON completions(request_id);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO completions (
    id, request_id, ts, provider, model, outcome, error_kind, status_code,
    attempts, duration_ms, prompt_hash,
    prompt_tokens, completion_tokens, total_tokens, cache_hit_tokens
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

const selectColumns = `
    id, request_id, ts, provider, model, outcome, error_kind, status_code,
    attempts, duration_ms, prompt_hash,
    prompt_tokens, completion_tokens, total_tokens, cache_hit_tokens
`
