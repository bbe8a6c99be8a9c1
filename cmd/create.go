package cmd

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/app"
	"github.com/firefly-engineering/warden-ctl/internal/audit"
	"github.com/firefly-engineering/warden-ctl/internal/config"
	"github.com/firefly-engineering/warden-ctl/internal/container"
	"github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/logging"
	"github.com/firefly-engineering/warden-ctl/internal/tui"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a container from a JSON request on stdin",
	Long: `Create a container from a JSON request read from stdin:

  {
    "warden_socket_path": "/tmp/warden.sock",
    "bind_mounts": [{"src_path": "/tmp/foo", "dst_path": "/bar", "mode": "ro"}],
    "disk_limit": 1073741824,
    "memory_limit": 268435456,
    "network": true
  }

All keys are required. Bind mounts are always read-only. On success the
handle and, when network was requested, the mapped ports are printed as
JSON on stdout.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

var createInteractive bool

func init() {
	createCmd.Flags().BoolVarP(&createInteractive, "interactive", "i", false, "Build the request with an interactive wizard")
	rootCmd.AddCommand(createCmd)
}

// createResult is printed on success. Port fields are omitted when the
// container has no network.
type createResult struct {
	Handle string `json:"handle"`
	*container.NetworkPorts
}

func runCreate(cmd *cobra.Command, args []string) error {
	req, err := readCreateRequest(cmd)
	if err != nil {
		return err
	}

	logging.Debug("creating container", "socket", req.SocketPath, "mounts", len(req.BindMounts),
		"disk_limit", req.DiskLimit, "memory_limit", req.MemoryLimit, "network", req.Network)

	c := app.Default.NewContainer(req.SocketPath)
	defer closeContainer(c)

	err = c.CreateContainer(cmd.Context(), req.BindMounts, req.DiskLimit, req.MemoryLimit, req.Network)
	if err != nil {
		var partial *container.PartialCreateError
		if stderrors.As(err, &partial) {
			recordEvent(audit.EventCreate, partial.Handle, fmt.Sprintf("mounts=%d", len(req.BindMounts)))
			recordEvent(audit.EventError, partial.Handle, partial.Step+" failed: "+partial.Err.Error())
		}
		return err
	}

	recordEvent(audit.EventCreate, c.Handle(), fmt.Sprintf("mounts=%d disk=%d memory=%d network=%t",
		len(req.BindMounts), req.DiskLimit, req.MemoryLimit, req.Network))

	out, err := json.Marshal(createResult{Handle: c.Handle(), NetworkPorts: c.NetworkPorts()})
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func readCreateRequest(cmd *cobra.Command) (*config.CreateRequest, error) {
	if createInteractive {
		// stdout is reserved for the result, so the wizard draws on stderr.
		req, err := tui.RunWizard(app.Default.Config.SocketPath,
			tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.ErrOrStderr()))
		if err != nil {
			if stderrors.Is(err, tui.ErrCancelled) {
				return nil, errors.InvalidArgument(err.Error())
			}
			return nil, fmt.Errorf("wizard failed: %w", err)
		}
		return req, nil
	}

	req, err := config.ParseCreateRequest(cmd.InOrStdin())
	if err != nil {
		return nil, errors.Wrap(errors.ExitInvalidArgument, "invalid create request", err)
	}
	return req, nil
}
