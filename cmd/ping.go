package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/app"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the warden daemon answers",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	c := app.Default.NewContainer("")
	defer closeContainer(c)

	if err := c.Ping(cmd.Context()); err != nil {
		return err
	}

	logSuccess("warden at %s is up", app.Default.Config.SocketPath)
	return nil
}
