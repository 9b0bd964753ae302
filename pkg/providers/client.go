package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryEvent describes a failed attempt that is about to be retried.
type RetryEvent struct {
	Provider   string
	Attempt    int // zero-based index of the attempt that failed
	Kind       ErrorKind
	StatusCode int
	Wait       time.Duration
	Err        error
}

// Observer receives attempt-level signals from a Client. Observers are
// purely informational and cannot change the outcome of a call.
type Observer interface {
	// ObserveAttempt is called after every attempt; kind is empty on success.
	ObserveAttempt(provider string, kind ErrorKind, duration time.Duration)

	// ObserveRetry is called before every backoff wait.
	ObserveRetry(event RetryEvent)

	// ObserveCompletion is called once per Complete call.
	ObserveCompletion(provider, model string, result *CompletionResult, err *ClassifiedError, duration time.Duration)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithObserver registers an observer. Multiple observers are called in order.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) { c.observers = append(c.observers, o) }
}

// WithLogger replaces slog.Default as the client's logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRetryHook registers a callback invoked before every backoff wait.
func WithRetryHook(fn func(RetryEvent)) ClientOption {
	return func(c *Client) { c.onRetry = fn }
}

// Client drives one completion through classification, exponential backoff
// and Retry-After handling on top of a single-attempt Transport.
//
// A Client holds no per-call state; Complete is safe for concurrent use.
type Client struct {
	transport Transport
	policy    RetryPolicy
	logger    *slog.Logger
	observers []Observer
	onRetry   func(RetryEvent)
}

// NewClient creates a client for transport using policy.
func NewClient(transport Transport, policy RetryPolicy, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport,
		policy:    policy,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transport returns the underlying transport.
func (c *Client) Transport() Transport {
	return c.transport
}

// Policy returns the retry policy.
func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// Complete sends req upstream, making at most MaxRetries+1 attempts.
//
// 429, 5xx and network faults are retried while attempts remain; a 429
// waits for the upstream's Retry-After when it sent one. 401, 403 and any
// other non-2xx status end the call at once. Every failure is returned as
// a *ClassifiedError. The end of ctx aborts both an in-flight attempt and a
// pending wait; cancellation yields KindCanceled and a passed deadline
// yields KindTimeout.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	provider := c.transport.GetName()

	if err := req.Validate(); err != nil {
		return nil, &ClassifiedError{
			Kind:     KindInvalidRequest,
			Provider: provider,
			Message:  err.Error(),
			Err:      err,
		}
	}
	if req.Model == "" {
		req.Model = c.transport.DefaultModel()
	}

	start := time.Now()
	attempts := 0
	var last *ClassifiedError

	operation := func() (*CompletionResult, error) {
		attempts++
		attemptStart := time.Now()

		result, err := c.attempt(ctx, req)
		if err == nil {
			c.observeAttempt(provider, "", time.Since(attemptStart))
			result.Attempts = attempts
			return result, nil
		}

		ce := c.classify(ctx, provider, err)
		ce.Attempts = attempts
		last = ce
		c.observeAttempt(provider, ce.Kind, time.Since(attemptStart))

		if !ce.Retryable() {
			return nil, backoff.Permanent(ce)
		}
		if ce.HasRetryAfter {
			return nil, errors.Join(ce, &backoff.RetryAfterError{Duration: ce.RetryAfter})
		}
		return nil, ce
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policyBackOff{policy: c.policy, attempt: &attempts}),
		backoff.WithMaxTries(uint(c.policy.MaxAttempts())),
		backoff.WithMaxElapsedTime(c.policy.MaxElapsed),
		backoff.WithNotify(func(_ error, wait time.Duration) {
			c.notifyRetry(provider, last, wait)
		}),
	)

	if err != nil {
		ce := c.terminal(ctx, provider, err, last, attempts)
		if ce.Retryable() && ce.Attempts < c.policy.MaxAttempts() && ctx.Err() == nil {
			c.logger.Warn("retry budget exhausted, giving up with attempts left",
				"provider", provider,
				"attempts", ce.Attempts,
				"max_retries", c.policy.MaxRetries,
				"elapsed", time.Since(start),
				"max_elapsed", c.policy.MaxElapsed,
				"retry_after", ce.RetryAfter,
			)
			ce.Message += fmt.Sprintf(" (retry budget of %s exhausted)", c.policy.MaxElapsed)
		}
		c.logger.Error("completion failed",
			"provider", provider,
			"model", req.Model,
			"kind", ce.Kind,
			"status", ce.StatusCode,
			"attempts", ce.Attempts,
			"error", ce.Message,
		)
		c.observeCompletion(provider, req.Model, nil, ce, time.Since(start))
		return nil, ce
	}

	if result.Model == "" {
		result.Model = req.Model
	}
	c.logger.Debug("completion succeeded",
		"provider", provider,
		"model", result.Model,
		"attempts", result.Attempts,
		"total_tokens", result.Usage.TotalTokens,
	)
	c.observeCompletion(provider, req.Model, result, nil, time.Since(start))
	return result, nil
}

// attempt performs one upstream exchange under the per-attempt timeout.
func (c *Client) attempt(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if c.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.policy.AttemptTimeout)
		defer cancel()
	}

	result, err := c.transport.SendCompletion(ctx, req)
	if err == nil && result == nil {
		result = &CompletionResult{}
	}
	return result, err
}

func (c *Client) classify(ctx context.Context, provider string, err error) *ClassifiedError {
	var se *StatusError
	if errors.As(err, &se) {
		return classifyStatus(provider, se)
	}
	return classifyFault(ctx, provider, err)
}

// terminal converts whatever backoff.Retry returned into the final error.
// Retry hands back either the last operation error or, when the wait was
// interrupted, the context's cause.
func (c *Client) terminal(ctx context.Context, provider string, err error, last *ClassifiedError, attempts int) *ClassifiedError {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}

	ce = interrupted(ctx, provider, "while waiting to retry", err)
	ce.Attempts = attempts
	if last != nil {
		ce.StatusCode = last.StatusCode
		ce.Status = last.Status
		ce.Body = last.Body
	}
	return ce
}

func (c *Client) notifyRetry(provider string, last *ClassifiedError, wait time.Duration) {
	if last == nil {
		return
	}

	event := RetryEvent{
		Provider:   provider,
		Attempt:    last.Attempts - 1,
		Kind:       last.Kind,
		StatusCode: last.StatusCode,
		Wait:       wait,
		Err:        last,
	}

	c.logger.Warn("upstream attempt failed, will retry",
		"provider", provider,
		"attempt", last.Attempts,
		"max_retries", c.policy.MaxRetries,
		"kind", last.Kind,
		"status", last.StatusCode,
		"wait", wait,
	)

	for _, o := range c.observers {
		o.ObserveRetry(event)
	}
	if c.onRetry != nil {
		c.onRetry(event)
	}
}

func (c *Client) observeAttempt(provider string, kind ErrorKind, d time.Duration) {
	for _, o := range c.observers {
		o.ObserveAttempt(provider, kind, d)
	}
}

func (c *Client) observeCompletion(provider, model string, result *CompletionResult, ce *ClassifiedError, d time.Duration) {
	for _, o := range c.observers {
		o.ObserveCompletion(provider, model, result, ce, d)
	}
}
