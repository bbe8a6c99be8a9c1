package container

import (
	"context"
	"fmt"
	"sync"

	"github.com/firefly-engineering/warden-ctl/internal/protocol"
	"github.com/firefly-engineering/warden-ctl/internal/warden"
)

// MockProvider is a ConnectionProvider for tests. It records every request,
// answers with canned responses and can inject errors per request type.
type MockProvider struct {
	mu sync.Mutex

	// Responses overrides the default response for a request type
	Responses map[protocol.Type]protocol.Response

	// Queued responses are returned, in order, before Responses
	Queued map[protocol.Type][]protocol.Response

	// Errors queues errors per request type; each call consumes one.
	// A nil entry lets that call succeed. A connection-class error also
	// disconnects the connection.
	Errors map[protocol.Type][]error

	// GetErrors queues errors returned by Get before any connection is made
	GetErrors []error

	// CallLog records all requests for verification
	CallLog []MockCall

	conns    map[string]*MockConnection
	dials    map[string]int
	closed   int
	nextPort uint32
}

// MockCall is one recorded request and the connection it was sent on.
type MockCall struct {
	Connection string
	Request    protocol.Request
}

// NewMockProvider creates a new mock provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Responses: make(map[protocol.Type]protocol.Response),
		Queued:    make(map[protocol.Type][]protocol.Response),
		Errors:    make(map[protocol.Type][]error),
		CallLog:   make([]MockCall, 0),
		conns:     make(map[string]*MockConnection),
		dials:     make(map[string]int),
		nextPort:  61000,
	}
}

// SetResponse sets the response for every request of type t
func (m *MockProvider) SetResponse(t protocol.Type, resp protocol.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[t] = resp
}

// QueueResponses makes the next len(resps) requests of type t return resps in order
func (m *MockProvider) QueueResponses(t protocol.Type, resps ...protocol.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queued[t] = append(m.Queued[t], resps...)
}

// QueueErrors makes the next len(errs) requests of type t fail in order
func (m *MockProvider) QueueErrors(t protocol.Type, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[t] = append(m.Errors[t], errs...)
}

// GetCalls returns all recorded calls
func (m *MockProvider) GetCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockCall, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// GetCallsFor returns all calls of a request type
func (m *MockProvider) GetCallsFor(t protocol.Type) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []MockCall
	for _, call := range m.CallLog {
		if call.Request.Type() == t {
			calls = append(calls, call)
		}
	}
	return calls
}

// Dials returns how many connections were made for name
func (m *MockProvider) Dials(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dials[name]
}

// Closed returns how many times CloseAll was called
func (m *MockProvider) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SocketPath returns a fixed fake path
func (m *MockProvider) SocketPath() string {
	return "mock.sock"
}

// Get returns the live connection for name, making a new one when there
// is none.
func (m *MockProvider) Get(ctx context.Context, name string) (warden.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.GetErrors) > 0 {
		err := m.GetErrors[0]
		m.GetErrors = m.GetErrors[1:]
		return nil, err
	}

	if conn, ok := m.conns[name]; ok && conn.connected {
		return conn, nil
	}

	conn := &MockConnection{provider: m, name: name, connected: true}
	m.conns[name] = conn
	m.dials[name]++
	return conn, nil
}

// CloseAll disconnects every connection
func (m *MockProvider) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.conns {
		conn.connected = false
	}
	m.conns = make(map[string]*MockConnection)
	m.closed++
	return nil
}

// MockConnection is a connection handed out by MockProvider
type MockConnection struct {
	provider  *MockProvider
	name      string
	connected bool
}

// Connected reports whether the connection is usable
func (c *MockConnection) Connected() bool {
	c.provider.mu.Lock()
	defer c.provider.mu.Unlock()
	return c.connected
}

// Disconnect marks the connection closed
func (c *MockConnection) Disconnect() error {
	c.provider.mu.Lock()
	defer c.provider.mu.Unlock()
	c.connected = false
	return nil
}

// Call records req and returns the queued error or the canned response
func (c *MockConnection) Call(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	m := c.provider
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallLog = append(m.CallLog, MockCall{Connection: c.name, Request: req})

	if !c.connected {
		return nil, &warden.ConnectionError{Op: "call", Err: warden.ErrNotConnected}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if queued := m.Errors[req.Type()]; len(queued) > 0 {
		err := queued[0]
		m.Errors[req.Type()] = queued[1:]
		if err != nil {
			if warden.IsConnectionError(err) {
				c.connected = false
			}
			return nil, err
		}
	}

	if queued := m.Queued[req.Type()]; len(queued) > 0 {
		resp := queued[0]
		m.Queued[req.Type()] = queued[1:]
		return resp, nil
	}
	if resp, ok := m.Responses[req.Type()]; ok {
		return resp, nil
	}
	return m.defaultResponse(req)
}

func (m *MockProvider) defaultResponse(req protocol.Request) (protocol.Response, error) {
	switch r := req.(type) {
	case *protocol.PingRequest:
		return &protocol.PingResponse{}, nil
	case *protocol.CreateRequest:
		return &protocol.CreateResponse{Handle: "mock-handle"}, nil
	case *protocol.DestroyRequest:
		return &protocol.DestroyResponse{}, nil
	case *protocol.InfoRequest:
		return &protocol.InfoResponse{
			State:         "active",
			HostIP:        "10.254.0.1",
			ContainerIP:   "10.254.0.2",
			ContainerPath: "/tmp/warden/containers/" + r.Handle,
		}, nil
	case *protocol.RunRequest:
		return &protocol.RunResponse{}, nil
	case *protocol.SpawnRequest:
		return &protocol.SpawnResponse{JobID: 1}, nil
	case *protocol.LimitMemoryRequest:
		return &protocol.LimitMemoryResponse{LimitInBytes: r.LimitInBytes}, nil
	case *protocol.LimitDiskRequest:
		return &protocol.LimitDiskResponse{Byte: r.Byte}, nil
	case *protocol.NetInRequest:
		m.nextPort++
		return &protocol.NetInResponse{HostPort: m.nextPort, ContainerPort: m.nextPort}, nil
	}
	return nil, fmt.Errorf("mock: unhandled request type %s", req.Type())
}
