// Package protocol defines the messages exchanged with the warden daemon.
//
// Every request and response kind is its own Go type tagged with a Type.
// NewRequest and NewResponse are the only places that map a tag back to a
// type, so adding a kind means adding a case to both switches.
//
// # Wire Format
//
// A message is a JSON envelope:
//
//	{"id": "<uuid>", "type": "net_in", "payload": {"handle": "abc", "host_port": 0}}
//
// framed the way warden frames its messages, as the decimal payload length,
// CRLF, the payload bytes, CRLF:
//
//	57\r\n{"id":"...","type":"ping","payload":{}}\r\n
//
// The daemon answers every request with exactly one message carrying the
// same id, either of the request's type or of type "error".
package protocol
