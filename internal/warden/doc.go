// Package warden talks to the warden daemon over its unix socket.
//
// # Client
//
// A Client is one socket connection. It performs one request/response
// round-trip at a time:
//
//	c := warden.NewClient("/tmp/warden.sock")
//	if err := c.Connect(ctx); err != nil { ... }
//	resp, err := c.Call(ctx, &protocol.InfoRequest{Handle: h})
//
// Any failure that leaves the stream in an unknown state (write or read
// error, deadline, response id mismatch) closes the socket and marks the
// client disconnected. The caller gets a *ConnectionError.
//
// # Errors
//
// Two classes matter to callers:
//   - connection-class (IsConnectionError): the daemon was not reached or the
//     stream broke. Retrying on a fresh connection is safe for idempotent
//     requests.
//   - server errors (*ServerError): the daemon answered with an error
//     message. Retrying will not help.
//
// # Provider
//
// Provider caches one Connection per logical name ("app", "info", ...) so
// independent command streams do not reconnect for every request. A
// disconnected connection is dropped and replaced on the next Get.
package warden
