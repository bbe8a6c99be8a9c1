package warden

import (
	"context"
	"errors"
	"sync"

	"github.com/firefly-engineering/warden-ctl/internal/logging"
	"github.com/firefly-engineering/warden-ctl/internal/protocol"
)

// Connection is a live channel to the daemon.
type Connection interface {
	Connected() bool
	Call(ctx context.Context, req protocol.Request) (protocol.Response, error)
	Disconnect() error
}

// Factory constructs and connects a new Connection to socketPath.
type Factory func(ctx context.Context, socketPath string) (Connection, error)

// ClientFactory returns a Factory that builds connected Clients.
func ClientFactory(opts ...ClientOption) Factory {
	return func(ctx context.Context, socketPath string) (Connection, error) {
		c := NewClient(socketPath, opts...)
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// ProviderOption configures a Provider
type ProviderOption func(*Provider)

// WithFactory sets how new connections are made.
func WithFactory(f Factory) ProviderOption {
	return func(p *Provider) {
		p.factory = f
	}
}

// WithClientOptions forwards options to every Client the provider creates.
// It has no effect together with WithFactory.
func WithClientOptions(opts ...ClientOption) ProviderOption {
	return func(p *Provider) {
		p.clientOpts = append(p.clientOpts, opts...)
	}
}

// Provider hands out one cached connection per name, all to the same
// socket.
type Provider struct {
	socketPath string
	factory    Factory
	clientOpts []ClientOption

	mu    sync.Mutex
	conns map[string]Connection
}

// NewProvider creates a provider for the daemon at socketPath.
func NewProvider(socketPath string, opts ...ProviderOption) *Provider {
	p := &Provider{
		socketPath: socketPath,
		conns:      make(map[string]Connection),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.factory == nil {
		p.factory = ClientFactory(p.clientOpts...)
	}
	return p
}

// SocketPath returns the daemon address.
func (p *Provider) SocketPath() string {
	return p.socketPath
}

// Get returns the connection cached under name if it is still connected,
// otherwise a freshly established one. Nothing is cached when connecting
// fails.
func (p *Provider) Get(ctx context.Context, name string) (Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.conns[name]; ok {
		if conn.Connected() {
			return conn, nil
		}
		logging.Debug("discarding stale warden connection", "name", name)
		delete(p.conns, name)
	}

	conn, err := p.factory(ctx, p.socketPath)
	if err != nil {
		return nil, err
	}
	p.conns[name] = conn
	return conn, nil
}

// CloseAll disconnects every cached connection and empties the cache.
// Every connection is attempted even if some fail.
func (p *Provider) CloseAll() error {
	p.mu.Lock()
	conns := p.conns
	p.conns = make(map[string]Connection)
	p.mu.Unlock()

	var errs []error
	for name, conn := range conns {
		if err := conn.Disconnect(); err != nil {
			logging.Debug("failed to disconnect", "name", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
