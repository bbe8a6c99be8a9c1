package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/firefly-engineering/warden-ctl/internal/config"
	werrors "github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/logging"
	"github.com/firefly-engineering/warden-ctl/internal/protocol"
	"github.com/firefly-engineering/warden-ctl/internal/warden"
)

// Connection names. Lifecycle, network and spawn requests share "app";
// info queries get their own connection.
const (
	ConnApp  = "app"
	ConnInfo = "info"
)

// ConnectionProvider hands out named connections. *warden.Provider
// implements it.
type ConnectionProvider interface {
	Get(ctx context.Context, name string) (warden.Connection, error)
	CloseAll() error
	SocketPath() string
}

// NetworkPorts are the two port mappings made by SetupNetwork.
type NetworkPorts struct {
	HostPort             uint32 `json:"host_port"`
	ContainerPort        uint32 `json:"container_port"`
	ConsoleHostPort      uint32 `json:"console_host_port"`
	ConsoleContainerPort uint32 `json:"console_container_port"`
}

// PartialCreateError reports a create that got a handle from the daemon
// but failed a later step. The container exists and is not rolled back.
type PartialCreateError struct {
	Handle string
	Step   string
	Err    error
}

func (e *PartialCreateError) Error() string {
	return fmt.Sprintf("container %s created but %s failed: %v", e.Handle, e.Step, e.Err)
}

func (e *PartialCreateError) Unwrap() error {
	return e.Err
}

// ExitCode implements the CLI exit code contract.
func (e *PartialCreateError) ExitCode() int {
	return werrors.ExitPartialCreate
}

// Container is a client-side view of one daemon container. It is not safe
// for concurrent use; distinct Containers may be used in parallel.
type Container struct {
	provider ConnectionProvider
	opts     Options

	handle       string
	path         string
	hostIP       string
	networkPorts *NetworkPorts
}

// New returns an unbound Container that reaches the daemon through provider.
func New(provider ConnectionProvider, opts Options) *Container {
	return &Container{provider: provider, opts: opts}
}

// Handle returns the daemon id, empty when unbound.
func (c *Container) Handle() string { return c.handle }

// SetHandle binds the Container to an existing daemon container.
func (c *Container) SetHandle(handle string) { c.handle = handle }

// Path returns the container path learned by UpdatePathAndIP.
func (c *Container) Path() string { return c.path }

// HostIP returns the host IP learned by UpdatePathAndIP.
func (c *Container) HostIP() string { return c.hostIP }

// NetworkPorts returns a copy of the port mappings, or nil before
// SetupNetwork has succeeded.
func (c *Container) NetworkPorts() *NetworkPorts {
	if c.networkPorts == nil {
		return nil
	}
	ports := *c.networkPorts
	return &ports
}

func (c *Container) requireHandle() error {
	if c.handle == "" {
		return werrors.InvalidArgument("container handle must not be empty")
	}
	return nil
}

// CreateContainer creates the container, applies the disk and memory
// limits and, when withNetwork is set, maps the network ports. Nothing is
// rolled back: a failure after the handle was assigned is returned as a
// *PartialCreateError and the Container stays bound to that handle.
func (c *Container) CreateContainer(ctx context.Context, mounts []config.BindMount, diskLimit, memoryLimit uint64, withNetwork bool) error {
	if err := c.NewContainerWithBindMounts(ctx, mounts); err != nil {
		return err
	}

	partial := func(step string, err error) error {
		return &PartialCreateError{Handle: c.handle, Step: step, Err: err}
	}

	if _, err := c.LimitDisk(ctx, diskLimit); err != nil {
		return partial("limit_disk", err)
	}
	if _, err := c.LimitMemory(ctx, memoryLimit); err != nil {
		return partial("limit_memory", err)
	}
	if withNetwork {
		if err := c.SetupNetwork(ctx); err != nil {
			return partial("net_in", err)
		}
	}

	logging.Info("container created", "handle", c.handle, "network", withNetwork)
	return nil
}

// NewContainerWithBindMounts sends a create request and adopts the
// returned handle. Every mount is sent read-only.
func (c *Container) NewContainerWithBindMounts(ctx context.Context, mounts []config.BindMount) error {
	wireMounts, err := normalizeMounts(mounts, c.opts.MountRoot)
	if err != nil {
		return err
	}

	resp, err := c.Call(ctx, ConnApp, &protocol.CreateRequest{BindMounts: wireMounts})
	if err != nil {
		return err
	}

	created, err := expect[*protocol.CreateResponse](resp)
	if err != nil {
		return err
	}
	if created.Handle == "" {
		return werrors.DaemonError("create response did not include a handle")
	}
	c.handle = created.Handle
	logging.Debug("container handle assigned", "handle", c.handle, "mounts", len(wireMounts))
	return nil
}

// LimitDisk sets the disk quota in bytes.
func (c *Container) LimitDisk(ctx context.Context, bytes uint64) (*protocol.LimitDiskResponse, error) {
	if err := c.requireHandle(); err != nil {
		return nil, err
	}
	resp, err := c.CallWithRetry(ctx, ConnApp, &protocol.LimitDiskRequest{Handle: c.handle, Byte: bytes})
	if err != nil {
		return nil, err
	}
	return expect[*protocol.LimitDiskResponse](resp)
}

// LimitMemory sets the memory limit in bytes.
func (c *Container) LimitMemory(ctx context.Context, bytes uint64) (*protocol.LimitMemoryResponse, error) {
	if err := c.requireHandle(); err != nil {
		return nil, err
	}
	resp, err := c.CallWithRetry(ctx, ConnApp, &protocol.LimitMemoryRequest{Handle: c.handle, LimitInBytes: bytes})
	if err != nil {
		return nil, err
	}
	return expect[*protocol.LimitMemoryResponse](resp)
}

// SetupNetwork maps two ports, the primary then the console. The ports
// are recorded only once both mappings exist.
func (c *Container) SetupNetwork(ctx context.Context) error {
	if err := c.requireHandle(); err != nil {
		return err
	}

	resp, err := c.Call(ctx, ConnApp, &protocol.NetInRequest{Handle: c.handle})
	if err != nil {
		return err
	}
	primary, err := expect[*protocol.NetInResponse](resp)
	if err != nil {
		return err
	}

	resp, err = c.Call(ctx, ConnApp, &protocol.NetInRequest{Handle: c.handle})
	if err != nil {
		return err
	}
	console, err := expect[*protocol.NetInResponse](resp)
	if err != nil {
		return err
	}

	c.networkPorts = &NetworkPorts{
		HostPort:             primary.HostPort,
		ContainerPort:        primary.ContainerPort,
		ConsoleHostPort:      console.HostPort,
		ConsoleContainerPort: console.ContainerPort,
	}
	logging.Debug("container network ready", "handle", c.handle,
		"host_port", primary.HostPort, "console_host_port", console.HostPort)
	return nil
}

// Info queries the daemon for the container's state.
func (c *Container) Info(ctx context.Context) (*protocol.InfoResponse, error) {
	if err := c.requireHandle(); err != nil {
		return nil, err
	}
	resp, err := c.CallWithRetry(ctx, ConnInfo, &protocol.InfoRequest{Handle: c.handle})
	if err != nil {
		return nil, err
	}
	return expect[*protocol.InfoResponse](resp)
}

// UpdatePathAndIP fetches info and records the container path and host IP.
func (c *Container) UpdatePathAndIP(ctx context.Context) error {
	info, err := c.Info(ctx)
	if err != nil {
		return err
	}
	if info.ContainerPath == "" {
		return werrors.DaemonError("container path is not available")
	}
	c.path = info.ContainerPath
	c.hostIP = info.HostIP
	return nil
}

// RunScript runs script to completion on the connection called name. A
// nonzero exit status is returned as *errors.ExecutionError.
func (c *Container) RunScript(ctx context.Context, name, script string, privileged bool) (*protocol.RunResponse, error) {
	if err := c.requireHandle(); err != nil {
		return nil, err
	}

	resp, err := c.Call(ctx, name, &protocol.RunRequest{
		Handle:     c.handle,
		Script:     script,
		Privileged: privileged,
	})
	if err != nil {
		return nil, err
	}

	run, err := expect[*protocol.RunResponse](resp)
	if err != nil {
		return nil, err
	}
	if run.ExitStatus != 0 {
		return nil, &werrors.ExecutionError{
			ExitStatus: run.ExitStatus,
			Stdout:     run.Stdout,
			Stderr:     run.Stderr,
		}
	}
	return run, nil
}

// Spawn starts script in the background with the given rlimits and
// returns the job id. A zero limit is left to the daemon.
func (c *Container) Spawn(ctx context.Context, script string, nofile, nproc uint64) (*protocol.SpawnResponse, error) {
	if err := c.requireHandle(); err != nil {
		return nil, err
	}

	req := &protocol.SpawnRequest{
		Handle:  c.handle,
		Script:  script,
		Rlimits: &protocol.ResourceLimits{Nofile: nofile, Nproc: nproc},
	}

	resp, err := c.Call(ctx, ConnApp, req)
	if err != nil {
		return nil, err
	}
	return expect[*protocol.SpawnResponse](resp)
}

// Destroy removes the container and unbinds the handle. An error response
// from the daemon (typically an unknown handle) is logged and ignored.
// Any other failure is returned and the handle is kept for a retry.
func (c *Container) Destroy(ctx context.Context) error {
	if err := c.requireHandle(); err != nil {
		return err
	}

	_, err := c.CallWithRetry(ctx, ConnApp, &protocol.DestroyRequest{Handle: c.handle})
	if err != nil {
		var serverErr *warden.ServerError
		if !errors.As(err, &serverErr) {
			return err
		}
		logging.Warn("ignoring daemon error on destroy", "handle", c.handle, "error", serverErr)
	}

	logging.Debug("container destroyed", "handle", c.handle)
	c.handle = ""
	c.path = ""
	c.hostIP = ""
	c.networkPorts = nil
	return nil
}

// Ping checks that the daemon answers.
func (c *Container) Ping(ctx context.Context) error {
	_, err := c.CallWithRetry(ctx, ConnApp, &protocol.PingRequest{})
	return err
}

// CloseAllConnections releases every connection held by the provider.
func (c *Container) CloseAllConnections() error {
	return c.provider.CloseAll()
}
