package testutil

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/firefly-engineering/warden-ctl/internal/protocol"
)

// Handler answers one request. A returned error is sent back as an error
// response.
type Handler func(req protocol.Request) (protocol.Response, error)

// FakeDaemon is an in-process warden daemon listening on a unix socket. By
// default it keeps a table of containers and answers every request kind the
// way the real daemon would; Handle overrides a kind.
type FakeDaemon struct {
	SocketPath string

	dir      string
	listener net.Listener
	wg       sync.WaitGroup

	mu         sync.Mutex
	handlers   map[protocol.Type]Handler
	requests   []protocol.Request
	dropNext   int
	accepted   int
	active     map[net.Conn]struct{}
	containers map[string]bool
	nextHandle int
	nextPort   uint32
	nextJobID  uint32
	closed     bool
}

// NewFakeDaemon starts a daemon and stops it when the test ends.
func NewFakeDaemon(t testing.TB) *FakeDaemon {
	t.Helper()

	// t.TempDir paths can exceed the unix socket path limit.
	dir, err := os.MkdirTemp("", "warden")
	if err != nil {
		t.Fatalf("Failed to create socket directory: %v", err)
	}

	socketPath := filepath.Join(dir, "warden.sock")
	l, err := net.Listen("unix", socketPath)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("Failed to listen on %s: %v", socketPath, err)
	}

	d := &FakeDaemon{
		SocketPath: socketPath,
		dir:        dir,
		listener:   l,
		handlers:   make(map[protocol.Type]Handler),
		active:     make(map[net.Conn]struct{}),
		containers: make(map[string]bool),
		nextPort:   61001,
		nextJobID:  1,
	}

	d.wg.Add(1)
	go d.acceptLoop()

	t.Cleanup(d.Close)
	return d
}

// Handle overrides the answer for one request type.
func (d *FakeDaemon) Handle(t protocol.Type, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = h
}

// DropNext makes the daemon hang up, without answering, on the next n
// requests it reads.
func (d *FakeDaemon) DropNext(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropNext = n
}

// AddContainer registers an existing container handle.
func (d *FakeDaemon) AddContainer(handle string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.containers[handle] = true
}

// HasContainer reports whether handle exists on the daemon.
func (d *FakeDaemon) HasContainer(handle string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.containers[handle]
}

// Requests returns every request received so far, dropped ones included.
func (d *FakeDaemon) Requests() []protocol.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	reqs := make([]protocol.Request, len(d.requests))
	copy(reqs, d.requests)
	return reqs
}

// RequestsOf returns the received requests of one type.
func (d *FakeDaemon) RequestsOf(t protocol.Type) []protocol.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	var reqs []protocol.Request
	for _, req := range d.requests {
		if req.Type() == t {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// Connections returns how many connections were accepted.
func (d *FakeDaemon) Connections() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepted
}

// Restart hangs up every connection and listens again on the same socket,
// the way a restarted daemon would. Containers and recorded requests are
// kept.
func (d *FakeDaemon) Restart(t testing.TB) {
	t.Helper()

	d.mu.Lock()
	for conn := range d.active {
		conn.Close()
	}
	d.mu.Unlock()

	d.listener.Close()
	d.wg.Wait()
	os.Remove(d.SocketPath)

	l, err := net.Listen("unix", d.SocketPath)
	if err != nil {
		t.Fatalf("Failed to listen again on %s: %v", d.SocketPath, err)
	}
	d.listener = l

	d.wg.Add(1)
	go d.acceptLoop()
}

// Close stops the daemon and removes its socket.
func (d *FakeDaemon) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for conn := range d.active {
		conn.Close()
	}
	d.mu.Unlock()

	d.listener.Close()
	d.wg.Wait()
	os.RemoveAll(d.dir)
}

func (d *FakeDaemon) acceptLoop() {
	defer d.wg.Done()
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			return
		}

		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			conn.Close()
			return
		}
		d.accepted++
		d.active[conn] = struct{}{}
		d.mu.Unlock()

		d.wg.Add(1)
		go d.serve(conn)
	}
}

func (d *FakeDaemon) serve(conn net.Conn) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		delete(d.active, conn)
		d.mu.Unlock()
		conn.Close()
	}()

	r := bufio.NewReader(conn)
	for {
		msg, err := protocol.ReadMessage(r)
		if err != nil {
			return
		}

		var resp protocol.Response
		req, err := msg.Request()
		if err != nil {
			resp = &protocol.ErrorResponse{Message: err.Error()}
		} else {
			drop, handler := d.record(req)
			if drop {
				return
			}
			resp, err = handler(req)
			if err != nil {
				resp = &protocol.ErrorResponse{Message: err.Error()}
			}
		}

		out, err := protocol.NewMessage(msg.ID, resp)
		if err != nil {
			return
		}
		if err := protocol.WriteMessage(conn, out); err != nil {
			return
		}
	}
}

func (d *FakeDaemon) record(req protocol.Request) (bool, Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.requests = append(d.requests, req)
	if d.dropNext > 0 {
		d.dropNext--
		return true, nil
	}
	if h, ok := d.handlers[req.Type()]; ok {
		return false, h
	}
	return false, d.defaultHandler
}

func (d *FakeDaemon) defaultHandler(req protocol.Request) (protocol.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	known := func(handle string) error {
		if !d.containers[handle] {
			return fmt.Errorf("unknown handle")
		}
		return nil
	}

	switch r := req.(type) {
	case *protocol.PingRequest:
		return &protocol.PingResponse{}, nil

	case *protocol.CreateRequest:
		d.nextHandle++
		handle := r.Handle
		if handle == "" {
			handle = fmt.Sprintf("handle-%d", d.nextHandle)
		}
		d.containers[handle] = true
		return &protocol.CreateResponse{Handle: handle}, nil

	case *protocol.DestroyRequest:
		if err := known(r.Handle); err != nil {
			return nil, err
		}
		delete(d.containers, r.Handle)
		return &protocol.DestroyResponse{}, nil

	case *protocol.InfoRequest:
		if err := known(r.Handle); err != nil {
			return nil, err
		}
		return &protocol.InfoResponse{
			State:         "active",
			HostIP:        "10.254.0.1",
			ContainerIP:   "10.254.0.2",
			ContainerPath: "/tmp/warden/containers/" + r.Handle,
		}, nil

	case *protocol.RunRequest:
		if err := known(r.Handle); err != nil {
			return nil, err
		}
		return &protocol.RunResponse{ExitStatus: 0, Stdout: r.Script + "\n"}, nil

	case *protocol.SpawnRequest:
		if err := known(r.Handle); err != nil {
			return nil, err
		}
		id := d.nextJobID
		d.nextJobID++
		return &protocol.SpawnResponse{JobID: id}, nil

	case *protocol.LimitMemoryRequest:
		if err := known(r.Handle); err != nil {
			return nil, err
		}
		return &protocol.LimitMemoryResponse{LimitInBytes: r.LimitInBytes}, nil

	case *protocol.LimitDiskRequest:
		if err := known(r.Handle); err != nil {
			return nil, err
		}
		return &protocol.LimitDiskResponse{Byte: r.Byte}, nil

	case *protocol.NetInRequest:
		if err := known(r.Handle); err != nil {
			return nil, err
		}
		host := r.HostPort
		if host == 0 {
			host = d.nextPort
			d.nextPort++
		}
		container := r.ContainerPort
		if container == 0 {
			container = host
		}
		return &protocol.NetInResponse{HostPort: host, ContainerPort: container}, nil
	}

	return nil, fmt.Errorf("unsupported request %s", req.Type())
}
