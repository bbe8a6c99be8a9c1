package warden

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/firefly-engineering/warden-ctl/internal/logging"
	"github.com/firefly-engineering/warden-ctl/internal/protocol"
)

// DialFunc opens the raw stream to the daemon.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// ClientOption configures a Client
type ClientOption func(*Client)

// WithDialer replaces the unix socket dialer.
func WithDialer(dial DialFunc) ClientOption {
	return func(c *Client) {
		c.dial = dial
	}
}

// WithConnectTimeout bounds how long Connect waits for the socket.
func WithConnectTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.connectTimeout = d
	}
}

// Client is a single connection to the daemon.
// Round-trips are serialized; Connected and Disconnect never wait for an
// in-flight call.
type Client struct {
	socketPath     string
	dial           DialFunc
	connectTimeout time.Duration

	// callMu serializes round-trips on the stream.
	callMu sync.Mutex

	// connMu guards conn and reader.
	connMu    sync.Mutex
	conn      net.Conn
	reader    *bufio.Reader
	connected atomic.Bool
}

// NewClient creates a disconnected client for the socket at socketPath.
func NewClient(socketPath string, opts ...ClientOption) *Client {
	var d net.Dialer
	c := &Client{
		socketPath:     socketPath,
		dial:           d.DialContext,
		connectTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SocketPath returns the daemon address.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Connect opens the socket. It is a no-op on a connected client.
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		return nil
	}

	if c.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.connectTimeout)
		defer cancel()
	}

	conn, err := c.dial(ctx, "unix", c.socketPath)
	if err != nil {
		return &ConnectionError{Op: "dial " + c.socketPath, Err: err}
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.connected.Store(true)
	logging.Debug("connected to warden", "socket", c.socketPath)
	return nil
}

// Connected reports whether the socket is usable. Between calls it also
// checks whether the daemon hung up, so a restarted daemon is noticed
// before the next request is written. During a call the last known state
// is returned.
func (c *Client) Connected() bool {
	if !c.connected.Load() {
		return false
	}
	if !c.callMu.TryLock() {
		return true
	}
	defer c.callMu.Unlock()

	c.connMu.Lock()
	conn, reader := c.conn, c.reader
	c.connMu.Unlock()
	if conn == nil {
		return false
	}

	if err := peerGone(conn, reader); err != nil {
		logging.Debug("warden connection closed by peer", "socket", c.socketPath, "error", err)
		c.drop(conn)
		return false
	}
	return true
}

// Disconnect closes the socket. An in-flight Call fails with a
// connection error.
func (c *Client) Disconnect() error {
	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.reader = nil
	c.connected.Store(false)
	c.connMu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Call sends req and waits for the matching response. An error response
// from the daemon is returned as *ServerError and leaves the connection
// usable; any other failure is a *ConnectionError and disconnects.
func (c *Client) Call(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	c.connMu.Lock()
	conn, reader := c.conn, c.reader
	c.connMu.Unlock()

	if conn == nil {
		return nil, &ConnectionError{Op: "call", Err: ErrNotConnected}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := protocol.NewID()
	msg, err := protocol.NewMessage(id, req)
	if err != nil {
		return nil, err
	}

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, c.fail(ctx, conn, "set deadline", err)
	}
	// Unblock the read when ctx is cancelled without a deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	logging.Debug("warden call", "id", id, "type", req.Type())

	if err := protocol.WriteMessage(conn, msg); err != nil {
		return nil, c.fail(ctx, conn, "write", err)
	}

	reply, err := protocol.ReadMessage(reader)
	if err != nil {
		return nil, c.fail(ctx, conn, "read", err)
	}
	if reply.ID != id {
		return nil, c.fail(ctx, conn, "read", fmt.Errorf("response id %q does not match request id %q", reply.ID, id))
	}

	resp, err := reply.Response()
	if err != nil {
		return nil, c.fail(ctx, conn, "decode", err)
	}

	if errResp, ok := resp.(*protocol.ErrorResponse); ok {
		return nil, &ServerError{Message: errResp.Message, Data: errResp.Data}
	}
	if resp.Type() != req.Type() {
		return nil, c.fail(ctx, conn, "decode", fmt.Errorf("got %s response to %s request", resp.Type(), req.Type()))
	}

	return resp, nil
}

// fail drops conn and classifies err as a connection error. When the
// context ended the call, the context error is reported instead of the
// i/o timeout it caused.
func (c *Client) fail(ctx context.Context, conn net.Conn, op string, err error) error {
	c.drop(conn)

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else if errors.Is(err, os.ErrDeadlineExceeded) {
		// The socket deadline can fire just before the context timer.
		if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
			err = context.DeadlineExceeded
		}
	}
	logging.Debug("warden connection dropped", "socket", c.socketPath, "op", op, "error", err)
	return &ConnectionError{Op: op, Err: err}
}

// drop forgets conn if it is still current and closes it.
func (c *Client) drop(conn net.Conn) {
	c.connMu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.reader = nil
		c.connected.Store(false)
	}
	c.connMu.Unlock()
	_ = conn.Close()
}
