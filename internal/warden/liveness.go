package warden

import (
	"bufio"
	"errors"
	"io"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// errUnsolicited reports bytes from the daemon that no request asked for.
var errUnsolicited = errors.New("unsolicited data on idle connection")

// peerGone returns why an idle conn can no longer carry a request, or nil
// when it looks healthy. It never blocks. Streams without a file
// descriptor are assumed healthy.
func peerGone(conn net.Conn, reader *bufio.Reader) error {
	if reader != nil && reader.Buffered() > 0 {
		return errUnsolicited
	}

	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return err
	}

	var gone error
	buf := make([]byte, 1)
	err = raw.Read(func(fd uintptr) bool {
		n, _, rerr := unix.Recvfrom(int(fd), buf, unix.MSG_PEEK|unix.MSG_DONTWAIT)
		switch {
		case errors.Is(rerr, unix.EAGAIN), errors.Is(rerr, unix.EWOULDBLOCK), errors.Is(rerr, unix.EINTR):
		case rerr != nil:
			gone = rerr
		case n == 0:
			gone = io.EOF
		default:
			gone = errUnsolicited
		}
		return true
	})
	if err != nil {
		return err
	}
	return gone
}
