package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

// Outcome values stored in Record.Outcome.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Record is one completion call.
type Record struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Outcome    string    `json:"outcome"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Attempts   int       `json:"attempts"`
	DurationMS int64     `json:"duration_ms"`
	PromptHash string    `json:"prompt_hash"`

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	CacheHitTokens   int `json:"cache_hit_tokens,omitempty"`
}

// NewRecord builds a record from the outcome of Client.Complete. Exactly one
// of result and ce is expected to be non-nil.
func NewRecord(requestID string, req providers.CompletionRequest, provider string, result *providers.CompletionResult, ce *providers.ClassifiedError, d time.Duration) *Record {
	rec := &Record{
		ID:         uuid.NewString(),
		RequestID:  requestID,
		Timestamp:  time.Now().UTC(),
		Provider:   provider,
		Model:      req.Model,
		Outcome:    OutcomeSuccess,
		DurationMS: d.Milliseconds(),
		PromptHash: HashPrompt(req.Prompt),
	}

	if result != nil {
		if result.Model != "" {
			rec.Model = result.Model
		}
		rec.Attempts = result.Attempts
		rec.PromptTokens = result.Usage.PromptTokens
		rec.CompletionTokens = result.Usage.CompletionTokens
		rec.TotalTokens = result.Usage.TotalTokens
		rec.CacheHitTokens = result.Usage.CacheHitTokens
	}
	if ce != nil {
		rec.Outcome = OutcomeError
		rec.ErrorKind = string(ce.Kind)
		rec.StatusCode = ce.StatusCode
		rec.Attempts = ce.Attempts
	}

	return rec
}

// HashPrompt returns the hex SHA-256 of prompt.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Query filters records. Zero values match everything.
type Query struct {
	Provider string
	Model    string
	Outcome  string
	Since    time.Time
	Until    time.Time

	// Limit caps the number of records returned. Zero means no limit.
	Limit  int
	Offset int
}

// Summary aggregates records per provider and model.
type Summary struct {
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	Calls            int64  `json:"calls"`
	Failures         int64  `json:"failures"`
	Attempts         int64  `json:"attempts"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	TotalTokens      int64  `json:"total_tokens"`
}

// Storage persists ledger records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns matching records, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Summarize aggregates matching records per provider and model, ordered
	// by provider then model. Limit and Offset are ignored.
	Summarize(ctx context.Context, query *Query) ([]Summary, error)

	// DeleteBefore removes records older than cutoff and returns how many
	// were deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)

	// Close releases resources held by the storage.
	Close() error
}
