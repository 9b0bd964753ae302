package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger"
)

var csvHeader = []string{
	"id", "request_id", "timestamp", "provider", "model", "outcome",
	"error_kind", "status_code", "attempts", "duration_ms", "prompt_hash",
	"prompt_tokens", "completion_tokens", "total_tokens", "cache_hit_tokens",
}

// CSVExporter writes one row per record.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export implements Exporter.
func (e *CSVExporter) Export(ctx context.Context, records []*ledger.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return &ledger.ExportError{Format: "csv", RecordCount: len(records), Cause: err}
		}
	}

	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(row(r)); err != nil {
			return &ledger.ExportError{Format: "csv", RecordCount: i, Cause: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &ledger.ExportError{Format: "csv", RecordCount: len(records), Cause: err}
	}
	return nil
}

func row(r *ledger.Record) []string {
	status := ""
	if r.StatusCode != 0 {
		status = strconv.Itoa(r.StatusCode)
	}
	return []string{
		r.ID,
		r.RequestID,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.Provider,
		r.Model,
		r.Outcome,
		r.ErrorKind,
		status,
		strconv.Itoa(r.Attempts),
		strconv.FormatInt(r.DurationMS, 10),
		r.PromptHash,
		strconv.Itoa(r.PromptTokens),
		strconv.Itoa(r.CompletionTokens),
		strconv.Itoa(r.TotalTokens),
		strconv.Itoa(r.CacheHitTokens),
	}
}
