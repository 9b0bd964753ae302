package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/telemetry/logging"
)

// Config contains configuration for the ledger recorder.
type Config struct {
	// BufferSize is the size of the async write channel.
	// Default: 1000
	BufferSize int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:   1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes ledger records to storage on a background goroutine so
// completion callers never wait on disk.
type Recorder struct {
	storage    ledger.Storage
	config     Config
	recordChan chan *ledger.Record
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
	logger     *slog.Logger

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	written atomic.Int64
}

// New creates a recorder and starts its worker.
func New(storage ledger.Storage, config Config) *Recorder {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *ledger.Record, config.BufferSize),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "ledger.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("ledger recorder initialized",
		"buffer_size", config.BufferSize,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// RecordCompletion builds a record for one Client.Complete call and enqueues
// it. The request ID is taken from ctx. It never blocks: when the buffer is
// full the record is dropped and counted.
func (r *Recorder) RecordCompletion(ctx context.Context, req providers.CompletionRequest, provider string, result *providers.CompletionResult, ce *providers.ClassifiedError, d time.Duration) error {
	return r.Enqueue(ledger.NewRecord(logging.GetRequestID(ctx), req, provider, result, ce, d))
}

// Enqueue hands a record to the background writer.
func (r *Recorder) Enqueue(record *ledger.Record) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return &ledger.RecorderError{RecordID: record.ID, Cause: ledger.ErrRecorderClosed}
	}

	select {
	case r.recordChan <- record:
		return nil
	default:
		r.dropped.Add(1)
		r.logger.Warn("ledger buffer full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"buffer_size", r.config.BufferSize,
		)
		return &ledger.RecorderError{RecordID: record.ID, Cause: ledger.ErrQueueFull}
	}
}

// Dropped returns how many records were discarded because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Written returns how many records reached storage.
func (r *Recorder) Written() int64 {
	return r.written.Load()
}

// Close stops accepting records, drains the buffer and waits for the worker.
// Storage is not closed.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down ledger recorder")

		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		close(r.done)
		r.wg.Wait()

		r.logger.Info("ledger recorder shut down",
			"written", r.written.Load(),
			"dropped", r.dropped.Load(),
		)
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.write(record)

		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *ledger.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store ledger record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}
	r.written.Add(1)

	duration := time.Since(start)
	r.logger.Debug("ledger record stored",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"outcome", record.Outcome,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow ledger write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
