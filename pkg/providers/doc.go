// Package providers implements the resilient chat-completion client.
//
// # Overview
//
// A Transport performs exactly one HTTP exchange with an OpenAI- or
// DeepSeek-compatible chat-completion endpoint. Client wraps a Transport
// with the retry state machine: it classifies every outcome, waits with
// exponential backoff and jitter between retryable failures, honors the
// upstream's Retry-After on 429, and returns either a CompletionResult or a
// *ClassifiedError.
//
// # Classification
//
//	429        rate_limit_exceeded    retried, then terminal
//	401        authentication_error   never retried
//	403        authorization_error    never retried
//	>= 500     upstream_server_error  retried, then terminal
//	other      upstream_error         never retried
//	net fault  network_error          retried, then terminal
//
// Network faults are recognized by type (net.Error, syscall errno values,
// io.ErrUnexpectedEOF, per-attempt deadlines), not by error text.
//
// # Basic Usage
//
//	transport, err := deepseek.NewTransport(providers.ProviderConfig{
//	    Name:   "deepseek",
//	    APIKey: os.Getenv("DEEPSEEK_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer transport.Close()
//
//	client := providers.NewClient(transport, providers.DefaultRetryPolicy())
//	result, err := client.Complete(ctx, providers.NewCompletionRequest("Hello!"))
//	if err != nil {
//	    var ce *providers.ClassifiedError
//	    if errors.As(err, &ce) && ce.Kind == providers.KindRateLimitExceeded {
//	        // back off for a minute or two
//	    }
//	    return err
//	}
//	fmt.Println(result.Text)
//
// # Backoff
//
// The wait after zero-based attempt n is
//
//	min(BaseDelay*2^n + jitter, MaxDelay), jitter in [0, Jitter)
//
// The loop itself is driven by github.com/cenkalti/backoff/v5.
package providers
