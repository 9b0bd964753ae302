package providers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	base := 10 * time.Second

	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 10 * time.Second},
		{1, 20 * time.Second},
		{2, 40 * time.Second},
		{3, 80 * time.Second},
		{4, 100 * time.Second},
		{50, 100 * time.Second},
	}

	for _, tt := range tests {
		if got := calculateBackoff(tt.failures, base); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %s, want %s", tt.failures, got, tt.want)
		}
	}

	if got := calculateBackoff(5, time.Minute); got != 5*time.Minute {
		t.Errorf("expected 5 minute cap, got %s", got)
	}
}

func TestHTTPTransport_RecordHealth(t *testing.T) {
	transport := NewHTTPTransport(ProviderConfig{Name: "t"})

	boom := errors.New("unreachable")
	transport.recordHealth(boom)
	transport.recordHealth(boom)
	if !transport.IsHealthy() {
		t.Fatal("expected healthy after 2 failures")
	}

	transport.recordHealth(boom)
	if transport.IsHealthy() {
		t.Fatal("expected unhealthy after 3 failures")
	}
	if h := transport.GetHealth(); h.ConsecutiveFailures != 3 || !errors.Is(h.LastError, boom) {
		t.Errorf("unexpected health %+v", h)
	}

	transport.recordHealth(nil)
	if !transport.IsHealthy() || transport.GetHealth().ConsecutiveFailures != 0 {
		t.Error("expected recovery after a successful check")
	}
}

func TestHTTPTransport_HealthChecker(t *testing.T) {
	transport := NewHTTPTransport(ProviderConfig{Name: "t", HealthCheckInterval: 5 * time.Millisecond})

	var checks atomic.Int32
	transport.StartHealthChecker(context.Background(), func(context.Context) error {
		checks.Add(1)
		return errors.New("down")
	})

	deadline := time.Now().Add(2 * time.Second)
	for checks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if err := transport.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if checks.Load() < 3 {
		t.Fatalf("expected at least 3 checks, got %d", checks.Load())
	}
	if transport.IsHealthy() {
		t.Error("expected unhealthy after repeated check failures")
	}
}
