package warden_test

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firefly-engineering/warden-ctl/internal/container"
	"github.com/firefly-engineering/warden-ctl/internal/protocol"
	"github.com/firefly-engineering/warden-ctl/internal/testutil"
	"github.com/firefly-engineering/warden-ctl/internal/warden"
)

func connect(t *testing.T, socketPath string) *warden.Client {
	t.Helper()
	c := warden.NewClient(socketPath)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { c.Disconnect() })
	return c
}

func TestClient_Call(t *testing.T) {
	d := testutil.NewFakeDaemon(t)
	c := connect(t, d.SocketPath)

	resp, err := c.Call(context.Background(), &protocol.CreateRequest{})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	create, ok := resp.(*protocol.CreateResponse)
	if !ok {
		t.Fatalf("response type = %T, want *protocol.CreateResponse", resp)
	}
	if create.Handle == "" {
		t.Error("expected a handle")
	}

	// Same connection serves the next request.
	if _, err := c.Call(context.Background(), &protocol.InfoRequest{Handle: create.Handle}); err != nil {
		t.Fatalf("second Call failed: %v", err)
	}
	if d.Connections() != 1 {
		t.Errorf("connections = %d, want 1", d.Connections())
	}
	if !c.Connected() {
		t.Error("client should still be connected")
	}
}

func TestClient_ServerError(t *testing.T) {
	d := testutil.NewFakeDaemon(t)
	c := connect(t, d.SocketPath)

	_, err := c.Call(context.Background(), &protocol.DestroyRequest{Handle: "missing"})
	var serverErr *warden.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("error = %v, want *warden.ServerError", err)
	}
	if serverErr.Message != "unknown handle" {
		t.Errorf("Message = %q, want %q", serverErr.Message, "unknown handle")
	}
	if warden.IsConnectionError(err) {
		t.Error("a server error is not a connection error")
	}
	if !c.Connected() {
		t.Error("a server error should leave the connection usable")
	}
}

func TestClient_DroppedConnection(t *testing.T) {
	d := testutil.NewFakeDaemon(t)
	c := connect(t, d.SocketPath)
	d.DropNext(1)

	_, err := c.Call(context.Background(), &protocol.PingRequest{})
	if !warden.IsConnectionError(err) {
		t.Fatalf("error = %v, want a connection error", err)
	}
	if c.Connected() {
		t.Error("client should be disconnected after the daemon hung up")
	}

	_, err = c.Call(context.Background(), &protocol.PingRequest{})
	if !errors.Is(err, warden.ErrNotConnected) {
		t.Errorf("error = %v, want ErrNotConnected", err)
	}
}

func TestClient_ConnectFailure(t *testing.T) {
	dir, err := os.MkdirTemp("", "warden")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	c := warden.NewClient(filepath.Join(dir, "missing.sock"))
	err = c.Connect(context.Background())
	if !warden.IsConnectionError(err) {
		t.Fatalf("error = %v, want a connection error", err)
	}
	if c.Connected() {
		t.Error("client should not be connected")
	}
}

func TestClient_Timeout(t *testing.T) {
	d := testutil.NewFakeDaemon(t)
	block := make(chan struct{})
	defer close(block)
	d.Handle(protocol.TypeRun, func(req protocol.Request) (protocol.Response, error) {
		<-block
		return &protocol.RunResponse{}, nil
	})
	c := connect(t, d.SocketPath)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Call(ctx, &protocol.RunRequest{Handle: "h", Script: "sleep 10"})
	if !warden.IsConnectionError(err) {
		t.Fatalf("error = %v, want a connection error", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want it to wrap context.DeadlineExceeded", err)
	}
	if c.Connected() {
		t.Error("a timed out stream must not be reused")
	}
}

// staleContext has a deadline that passed before its timer fired.
type staleContext struct {
	context.Context
	deadline time.Time
}

func (c staleContext) Deadline() (time.Time, bool) { return c.deadline, true }

func TestClient_SocketDeadlineReportedAsContextDeadline(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	c := warden.NewClient("pipe", warden.WithDialer(func(ctx context.Context, network, address string) (net.Conn, error) {
		return client, nil
	}))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	ctx := staleContext{Context: context.Background(), deadline: time.Now().Add(-time.Millisecond)}
	_, err := c.Call(ctx, &protocol.PingRequest{})
	if !warden.IsConnectionError(err) {
		t.Fatalf("error = %v, want a connection error", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want it to wrap context.DeadlineExceeded", err)
	}
}

func TestClient_ConnectedDetectsHangup(t *testing.T) {
	d := testutil.NewFakeDaemon(t)
	c := connect(t, d.SocketPath)

	if _, err := c.Call(context.Background(), &protocol.PingRequest{}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !c.Connected() {
		t.Fatal("idle healthy connection should report connected")
	}

	d.Restart(t)

	if c.Connected() {
		t.Error("client should notice the daemon hung up")
	}
	if _, err := c.Call(context.Background(), &protocol.PingRequest{}); !errors.Is(err, warden.ErrNotConnected) {
		t.Errorf("error = %v, want ErrNotConnected", err)
	}
}

func TestClient_ConnectedUnsolicitedData(t *testing.T) {
	dir, err := os.MkdirTemp("", "warden")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	l, err := net.Listen("unix", filepath.Join(dir, "warden.sock"))
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := l.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	c := connect(t, l.Addr().String())
	server := <-accepted
	defer server.Close()

	if !c.Connected() {
		t.Fatal("idle healthy connection should report connected")
	}
	if _, err := server.Write([]byte("12\r\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if c.Connected() {
		t.Error("a reply nobody asked for should retire the connection")
	}
}

func TestClient_ConnectedWithoutDescriptor(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	c := warden.NewClient("pipe", warden.WithDialer(func(ctx context.Context, network, address string) (net.Conn, error) {
		return client, nil
	}))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !c.Connected() {
		t.Error("a stream without a file descriptor is assumed healthy")
	}
}

func TestContainer_RunScriptAfterDaemonRestart(t *testing.T) {
	d := testutil.NewFakeDaemon(t)
	d.AddContainer("h1")

	c := container.New(warden.NewProvider(d.SocketPath), container.DefaultOptions())
	c.SetHandle("h1")
	defer c.CloseAllConnections()

	if _, err := c.RunScript(context.Background(), container.ConnApp, "true", false); err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}

	d.Restart(t)

	// run is never retried, so the stale connection must not be reused.
	if _, err := c.RunScript(context.Background(), container.ConnApp, "true", false); err != nil {
		t.Fatalf("RunScript after restart failed: %v", err)
	}
	if d.Connections() != 2 {
		t.Errorf("connections = %d, want 2", d.Connections())
	}
}

func TestClient_MismatchedID(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	c := warden.NewClient("pipe", warden.WithDialer(func(ctx context.Context, network, address string) (net.Conn, error) {
		return client, nil
	}))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	go func() {
		buf := make([]byte, 4096)
		server.Read(buf)
		m, _ := protocol.NewMessage("someone-else", &protocol.PingResponse{})
		protocol.WriteMessage(server, m)
	}()

	_, err := c.Call(context.Background(), &protocol.PingRequest{})
	if !warden.IsConnectionError(err) {
		t.Fatalf("error = %v, want a connection error", err)
	}
	if c.Connected() {
		t.Error("client should disconnect after a desynchronised reply")
	}
}

func TestClient_Disconnect(t *testing.T) {
	d := testutil.NewFakeDaemon(t)
	c := connect(t, d.SocketPath)

	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if c.Connected() {
		t.Error("client should be disconnected")
	}
	if err := c.Disconnect(); err != nil {
		t.Errorf("second Disconnect should be a no-op, got %v", err)
	}
}

func TestProvider_WithDaemon(t *testing.T) {
	d := testutil.NewFakeDaemon(t)
	p := warden.NewProvider(d.SocketPath)
	defer p.CloseAll()

	first, err := p.Get(context.Background(), "app")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	d.DropNext(1)
	if _, err := first.Call(context.Background(), &protocol.PingRequest{}); !warden.IsConnectionError(err) {
		t.Fatalf("error = %v, want a connection error", err)
	}

	second, err := p.Get(context.Background(), "app")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if second == first {
		t.Error("provider should replace the dropped connection")
	}
	if _, err := second.Call(context.Background(), &protocol.PingRequest{}); err != nil {
		t.Errorf("Call on the new connection failed: %v", err)
	}
	if d.Connections() != 2 {
		t.Errorf("connections = %d, want 2", d.Connections())
	}
}
