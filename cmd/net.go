package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/audit"
)

var netCmd = &cobra.Command{
	Use:   "net <handle>",
	Short: "Map a primary and a console port into a container",
	Long: `Ask the daemon for two port mappings, the primary port then the console
port, and print all four ports as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runNet,
}

func init() {
	rootCmd.AddCommand(netCmd)
}

func runNet(cmd *cobra.Command, args []string) error {
	handle := args[0]

	c, err := openContainer(handle)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	if err := c.SetupNetwork(cmd.Context()); err != nil {
		return err
	}

	ports := c.NetworkPorts()
	recordEvent(audit.EventNetwork, handle, fmt.Sprintf("host_port=%d console_host_port=%d", ports.HostPort, ports.ConsoleHostPort))

	out, err := json.Marshal(ports)
	if err != nil {
		return fmt.Errorf("failed to encode ports: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
