package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/ledger"
)

// MemoryStorage keeps records in memory. Records are lost on restart.
type MemoryStorage struct {
	records []*ledger.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store implements ledger.Storage.
func (s *MemoryStorage) Store(_ context.Context, record *ledger.Record) error {
	recordCopy := *record

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, &recordCopy)
	return nil
}

// Query implements ledger.Storage.
func (s *MemoryStorage) Query(_ context.Context, query *ledger.Query) ([]*ledger.Record, error) {
	if query == nil {
		query = &ledger.Query{}
	}
	results := s.matching(query)

	slices.SortStableFunc(results, func(a, b *ledger.Record) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	if query.Offset >= len(results) {
		return []*ledger.Record{}, nil
	}
	results = results[query.Offset:]
	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}
	return results, nil
}

// Summarize implements ledger.Storage.
func (s *MemoryStorage) Summarize(_ context.Context, query *ledger.Query) ([]ledger.Summary, error) {
	type key struct{ provider, model string }
	groups := make(map[key]*ledger.Summary)

	for _, r := range s.matching(query) {
		k := key{r.Provider, r.Model}
		sum, ok := groups[k]
		if !ok {
			sum = &ledger.Summary{Provider: r.Provider, Model: r.Model}
			groups[k] = sum
		}
		sum.Calls++
		if r.Outcome == ledger.OutcomeError {
			sum.Failures++
		}
		sum.Attempts += int64(r.Attempts)
		sum.PromptTokens += int64(r.PromptTokens)
		sum.CompletionTokens += int64(r.CompletionTokens)
		sum.TotalTokens += int64(r.TotalTokens)
	}

	out := make([]ledger.Summary, 0, len(groups))
	for _, sum := range groups {
		out = append(out, *sum)
	}
	slices.SortFunc(out, func(a, b ledger.Summary) int {
		return cmp.Or(cmp.Compare(a.Provider, b.Provider), cmp.Compare(a.Model, b.Model))
	})
	return out, nil
}

// DeleteBefore implements ledger.Storage.
func (s *MemoryStorage) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.records)
	s.records = slices.DeleteFunc(s.records, func(r *ledger.Record) bool {
		return r.Timestamp.Before(cutoff)
	})
	return int64(before - len(s.records)), nil
}

// Count implements ledger.Storage.
func (s *MemoryStorage) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// Close implements ledger.Storage.
func (s *MemoryStorage) Close() error {
	return nil
}

func (s *MemoryStorage) matching(query *ledger.Query) []*ledger.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*ledger.Record
	for _, r := range s.records {
		if matches(r, query) {
			recordCopy := *r
			results = append(results, &recordCopy)
		}
	}
	return results
}

func matches(r *ledger.Record, q *ledger.Query) bool {
	if q == nil {
		return true
	}
	if q.Provider != "" && r.Provider != q.Provider {
		return false
	}
	if q.Model != "" && r.Model != q.Model {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if !q.Since.IsZero() && r.Timestamp.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !r.Timestamp.Before(q.Until) {
		return false
	}
	return true
}
