package server

import (
	"sync/atomic"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
)

// snapshot is what one request sees: a client and its request defaults.
type snapshot struct {
	client   *providers.Client
	defaults []providers.RequestOption
}

// Backend holds the client used by the handlers. Apply swaps it atomically
// so in-flight requests finish on the client they started with.
type Backend struct {
	transport  providers.Transport
	clientOpts []providers.ClientOption
	current    atomic.Pointer[snapshot]
}

// NewBackend builds the first client for transport from cfg.
func NewBackend(transport providers.Transport, cfg *config.Config, clientOpts ...providers.ClientOption) *Backend {
	b := &Backend{transport: transport, clientOpts: clientOpts}
	b.Apply(cfg)
	return b
}

// Apply rebuilds the client with the retry policy and request defaults of
// cfg. The transport is kept; provider changes need a restart.
func (b *Backend) Apply(cfg *config.Config) {
	b.current.Store(&snapshot{
		client:   providers.NewClient(b.transport, cfg.Retry.Policy(), b.clientOpts...),
		defaults: cfg.RequestOptions(),
	})
}

// Client implements handlers.Backend.
func (b *Backend) Client() *providers.Client {
	return b.current.Load().client
}

// RequestDefaults implements handlers.Backend.
func (b *Backend) RequestDefaults() []providers.RequestOption {
	return b.current.Load().defaults
}
