package cmd

import (
	"github.com/firefly-engineering/warden-ctl/internal/app"
	"github.com/firefly-engineering/warden-ctl/internal/audit"
	"github.com/firefly-engineering/warden-ctl/internal/container"
	"github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/logging"
)

// openContainer binds a container to handle on the configured socket.
func openContainer(handle string) (*container.Container, error) {
	if handle == "" {
		return nil, errors.InvalidArgument("container handle must not be empty")
	}
	return app.Default.OpenContainer("", handle), nil
}

// closeContainer releases the container's connections.
func closeContainer(c *container.Container) {
	if err := c.CloseAllConnections(); err != nil {
		logging.Debug("failed to close connections", "error", err)
	}
}

// recordEvent appends to the container's event log. A failure to record
// never fails the command.
func recordEvent(eventType audit.EventType, handle, details string) {
	if err := app.Default.Audit.LogEvent(eventType, handle, details); err != nil {
		logWarning("could not record %s event for %s: %v", eventType, handle, err)
	}
}
