package warden

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"

	werrors "github.com/firefly-engineering/warden-ctl/internal/errors"
)

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection error", &ConnectionError{Op: "read", Err: io.EOF}, true},
		{"wrapped connection error", fmt.Errorf("info: %w", &ConnectionError{Op: "dial", Err: errors.New("x")}), true},
		{"timeout as connection error", &ConnectionError{Op: "read", Err: context.DeadlineExceeded}, true},
		{"bare EOF", io.EOF, true},
		{"net closed", net.ErrClosed, true},
		{"refused", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, true},
		{"broken pipe", fmt.Errorf("write: %w", unix.EPIPE), true},
		{"server error", &ServerError{Message: "unknown handle"}, false},
		{"plain error", errors.New("container not found"), false},
		{"bare deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.want {
				t.Errorf("IsConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	connErr := &ConnectionError{Op: "read", Err: io.EOF}
	if connErr.Error() != "warden connection read: EOF" {
		t.Errorf("Error() = %q", connErr.Error())
	}
	if !errors.Is(connErr, io.EOF) {
		t.Error("ConnectionError should unwrap to its cause")
	}

	serverErr := &ServerError{Message: "unknown handle", Data: "abc"}
	if serverErr.Error() != "warden: unknown handle (abc)" {
		t.Errorf("Error() = %q", serverErr.Error())
	}
	if !IsServerError(fmt.Errorf("destroy: %w", serverErr)) {
		t.Error("IsServerError should see through wrapping")
	}
}

func TestExitCodes(t *testing.T) {
	if got := werrors.GetExitCode(&ConnectionError{Op: "dial", Err: io.EOF}); got != werrors.ExitConnectionFailed {
		t.Errorf("connection exit code = %d, want %d", got, werrors.ExitConnectionFailed)
	}
	if got := werrors.GetExitCode(&ServerError{Message: "x"}); got != werrors.ExitDaemonError {
		t.Errorf("server exit code = %d, want %d", got, werrors.ExitDaemonError)
	}
}
