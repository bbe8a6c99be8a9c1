package container

import (
	"context"
	"fmt"
	"time"

	werrors "github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/logging"
	"github.com/firefly-engineering/warden-ctl/internal/protocol"
	"github.com/firefly-engineering/warden-ctl/internal/warden"
)

// Call performs one round-trip of req on the connection called name.
// Errors are returned unchanged.
func (c *Container) Call(ctx context.Context, name string, req protocol.Request) (protocol.Response, error) {
	conn, err := c.provider.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if c.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.CallTimeout)
		defer cancel()
	}

	logging.Debug("container call", "connection", name, "type", req.Type(), "handle", c.handle)
	return conn.Call(ctx, req)
}

// CallWithRetry is Call, retried on connection errors. Each retry asks the
// provider again, which reconnects because the failed connection no longer
// reports connected. Other errors are returned after the first attempt.
func (c *Container) CallWithRetry(ctx context.Context, name string, req protocol.Request) (protocol.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.opts.backoff(attempt)
			logging.Warn("retrying warden call after connection error",
				"connection", name, "type", req.Type(), "attempt", attempt, "backoff", wait, "error", lastErr)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		resp, err := c.Call(ctx, name, req)
		if err == nil {
			return resp, nil
		}
		if !warden.IsConnectionError(err) {
			return nil, err
		}
		// The caller gave up; a fresh connection will not help.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, werrors.ConnectionFailed(
		fmt.Sprintf("%s request failed after %d attempts", req.Type(), c.opts.MaxRetries+1), lastErr)
}

// expect narrows resp to the response type its request promises. A
// Connection answering with another type is a daemon error.
func expect[T protocol.Response](resp protocol.Response) (T, error) {
	typed, ok := resp.(T)
	if !ok {
		var zero T
		return zero, werrors.DaemonError(fmt.Sprintf("unexpected %T response", resp))
	}
	return typed, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
