package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrRecorderClosed is returned for records submitted after Close.
	ErrRecorderClosed = errors.New("ledger recorder closed")

	// ErrQueueFull is returned when the recorder buffer has no room left.
	ErrQueueFull = errors.New("ledger recorder queue full")
)

// StorageError reports a failed backend operation such as "open", "store"
// or "query".
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

// NewStorageError wraps cause as a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// RecorderError reports a record the recorder refused to queue.
type RecorderError struct {
	RecordID string
	Cause    error
}

func (e *RecorderError) Error() string {
	return fmt.Sprintf("record %s not queued: %v", e.RecordID, e.Cause)
}

func (e *RecorderError) Unwrap() error { return e.Cause }

// ExportError reports a failed export. RecordCount is the number of
// records written before the failure, or the batch size if nothing was.
type ExportError struct {
	Format      string
	RecordCount int
	Cause       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s (%d records): %v", e.Format, e.RecordCount, e.Cause)
}

func (e *ExportError) Unwrap() error { return e.Cause }
