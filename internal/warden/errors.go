package warden

import (
	"errors"
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"

	werrors "github.com/firefly-engineering/warden-ctl/internal/errors"
)

// ErrNotConnected is returned by Call on a client without a live socket.
var ErrNotConnected = errors.New("not connected")

// ConnectionError reports that the daemon could not be reached or that the
// connection broke during a round-trip.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("warden connection %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code for this error
func (e *ConnectionError) ExitCode() int {
	return werrors.ExitConnectionFailed
}

// ServerError is an error response sent by the daemon.
type ServerError struct {
	Message string
	Data    string
}

func (e *ServerError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("warden: %s (%s)", e.Message, e.Data)
	}
	return "warden: " + e.Message
}

// ExitCode returns the exit code for this error
func (e *ServerError) ExitCode() int {
	return werrors.ExitDaemonError
}

// errnos that mean the peer is gone or never answered.
var connectionErrnos = []error{
	unix.ECONNREFUSED,
	unix.ECONNRESET,
	unix.ECONNABORTED,
	unix.EPIPE,
	unix.ENOTCONN,
	unix.ESHUTDOWN,
}

// IsConnectionError reports whether err means the transport failed, as
// opposed to the daemon answering with an error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return false
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	for _, errno := range connectionErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// IsServerError reports whether err carries an error response from the daemon.
func IsServerError(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
