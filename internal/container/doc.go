// Package container drives the lifecycle of one daemon container.
//
// A Container borrows named connections from a ConnectionProvider for each
// round-trip and never holds one between calls. Call performs a single
// attempt. CallWithRetry repeats an attempt that failed with a connection
// error, on a fresh connection, up to Options.MaxRetries times with
// exponential backoff.
//
// Lifecycle:
//
//	c := container.New(provider, container.DefaultOptions())
//	err := c.CreateContainer(ctx, mounts, diskLimit, memoryLimit, true)
//	ports := c.NetworkPorts()
//	res, err := c.RunScript(ctx, container.ConnApp, "echo hello", false)
//	err = c.Destroy(ctx)
//
// Create, net_in, run and spawn requests are sent once. Info, limit,
// destroy and ping requests are retried.
package container
