package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// maxModels bounds the number of distinct model label values.
const maxModels = 100

// Collector owns the Prometheus registry and every metric of the service.
// It implements providers.Observer so a Client reports attempts, retries and
// completions to it directly.
//
// Metrics (namespace "zyk" by default):
//   - completion_attempts_total{provider,outcome}
//   - completion_attempt_duration_seconds{provider}
//   - completion_retries_total{provider,kind}
//   - completion_retry_wait_seconds{provider}
//   - completions_total{provider,model,outcome,kind}
//   - completion_duration_seconds{provider,model}
//   - completion_attempts{provider}
//   - completion_tokens_total{provider,model,type}
//   - provider_health{provider}
//   - http_requests_total{method,path,status}
//   - http_request_duration_seconds{method,path}
type Collector struct {
	enabled  bool
	registry *prometheus.Registry
	models   *CardinalityLimiter

	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	retries         *prometheus.CounterVec
	retryWait       *prometheus.HistogramVec
	completions     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	attemptsPerCall *prometheus.HistogramVec
	tokens          *prometheus.CounterVec
	health          *prometheus.GaugeVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

var _ providers.Observer = (*Collector)(nil)

// NewCollector creates and registers every metric. If registry is nil a new
// one is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = config.DefaultMetricsNamespace
	}

	// Optimized for LLM latencies (100ms - 2m)
	latencyBuckets := []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

	c := &Collector{
		enabled:  cfg.Enabled,
		registry: registry,
		models:   NewCardinalityLimiter(maxModels),

		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "completion_attempts_total",
			Help:      "Upstream attempts by outcome (success or error kind)",
		}, []string{"provider", "outcome"}),

		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "completion_attempt_duration_seconds",
			Help:      "Duration of single upstream attempts in seconds",
			Buckets:   latencyBuckets,
		}, []string{"provider"}),

		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "completion_retries_total",
			Help:      "Retries scheduled by error kind",
		}, []string{"provider", "kind"}),

		retryWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "completion_retry_wait_seconds",
			Help:      "Backoff waits before retries in seconds",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 10, 30, 60, 120},
		}, []string{"provider"}),

		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "completions_total",
			Help:      "Completion calls by final outcome",
		}, []string{"provider", "model", "outcome", "kind"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "completion_duration_seconds",
			Help:      "Duration of completion calls including retries in seconds",
			Buckets:   latencyBuckets,
		}, []string{"provider", "model"}),

		attemptsPerCall: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "completion_attempts",
			Help:      "Attempts made per completion call",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 11},
		}, []string{"provider"}),

		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "completion_tokens_total",
			Help:      "Tokens reported by the upstream by type",
		}, []string{"provider", "model", "type"}),

		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "provider_health",
			Help:      "Provider health status (1=healthy, 0=unhealthy)",
		}, []string{"provider"}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by status",
		}, []string{"method", "path", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request duration in seconds",
			Buckets:   latencyBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(
		c.attempts,
		c.attemptDuration,
		c.retries,
		c.retryWait,
		c.completions,
		c.duration,
		c.attemptsPerCall,
		c.tokens,
		c.health,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

// ObserveAttempt implements providers.Observer.
func (c *Collector) ObserveAttempt(provider string, kind providers.ErrorKind, d time.Duration) {
	if !c.enabled {
		return
	}

	outcome := OutcomeSuccess
	if kind != "" {
		outcome = string(kind)
	}
	c.attempts.WithLabelValues(provider, outcome).Inc()
	c.attemptDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveRetry implements providers.Observer.
func (c *Collector) ObserveRetry(event providers.RetryEvent) {
	if !c.enabled {
		return
	}

	c.retries.WithLabelValues(event.Provider, string(event.Kind)).Inc()
	c.retryWait.WithLabelValues(event.Provider).Observe(event.Wait.Seconds())
}

// ObserveCompletion implements providers.Observer.
func (c *Collector) ObserveCompletion(provider, model string, result *providers.CompletionResult, ce *providers.ClassifiedError, d time.Duration) {
	if !c.enabled {
		return
	}

	if !c.models.Allow(model) {
		model = "other"
	}

	outcome, kind, attempts := OutcomeSuccess, "", 0
	if ce != nil {
		outcome, kind, attempts = OutcomeError, string(ce.Kind), ce.Attempts
	}
	if result != nil {
		attempts = result.Attempts
		c.tokens.WithLabelValues(provider, model, "prompt").Add(float64(result.Usage.PromptTokens))
		c.tokens.WithLabelValues(provider, model, "completion").Add(float64(result.Usage.CompletionTokens))
		if result.Usage.CacheHitTokens > 0 {
			c.tokens.WithLabelValues(provider, model, "cache_hit").Add(float64(result.Usage.CacheHitTokens))
		}
	}

	c.completions.WithLabelValues(provider, model, outcome, kind).Inc()
	c.duration.WithLabelValues(provider, model).Observe(d.Seconds())
	if attempts > 0 {
		c.attemptsPerCall.WithLabelValues(provider).Observe(float64(attempts))
	}
}

// UpdateProviderHealth sets the health gauge (1=healthy, 0=unhealthy).
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.enabled {
		return
	}

	value := 0.0
	if healthy {
		value = 1.0
	}
	c.health.WithLabelValues(provider).Set(value)
}

// RecordHTTPRequest records one inbound request. path must be a route
// pattern, not a raw URL path.
func (c *Collector) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if !c.enabled {
		return
	}

	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct values admitted for a label.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already known or still fits under the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
