// Package testutil provides a fake warden daemon, fixtures and a test
// environment for command tests.
//
// # Fake Daemon
//
// FakeDaemon listens on a unix socket and speaks the real wire codec. It
// tracks containers, assigns handles, ports and job ids, and records every
// request:
//
//	d := testutil.NewFakeDaemon(t)
//	d.Handle(protocol.TypeRun, func(req protocol.Request) (protocol.Response, error) {
//	    return &protocol.RunResponse{ExitStatus: 1}, nil
//	})
//	d.DropNext(1) // close the next connection without replying
//
// # Fixtures
//
// Fixtures are embedded using go:embed:
//
//	fixtures/valid_create_request.json
//	fixtures/invalid_create_request.json
//	fixtures/client_config.toml
//	fixtures/client_config.yaml
//
// WriteFixture copies one to a temp file for loaders that take a path.
//
// # Test Environment
//
// NewTestEnv wires app.Default to a fresh FakeDaemon and a temp state dir:
//
//	env := testutil.NewTestEnv(t)
//	payload := env.CreatePayload(nil, 100, 200, true)
package testutil
