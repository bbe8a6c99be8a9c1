package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/audit"
	"github.com/firefly-engineering/warden-ctl/internal/logging"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy <handle>",
	Short: "Destroy a container",
	Long: `Destroy a container by handle. A handle the daemon no longer knows is
treated as already destroyed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDestroy,
}

func init() {
	rootCmd.AddCommand(destroyCmd)
}

func runDestroy(cmd *cobra.Command, args []string) error {
	handle := args[0]

	c, err := openContainer(handle)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	logging.Debug("destroying container", "handle", handle)

	if err := c.Destroy(cmd.Context()); err != nil {
		recordEvent(audit.EventError, handle, "destroy failed: "+err.Error())
		return err
	}

	recordEvent(audit.EventDestroy, handle, "")
	logSuccess("Container %s destroyed", handle)
	return nil
}
