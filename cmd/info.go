package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/tui"
)

var infoCmd = &cobra.Command{
	Use:   "info <handle>",
	Short: "Show container state, addresses and path",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var infoFormat string

func init() {
	infoCmd.Flags().StringVarP(&infoFormat, "output", "o", "text", "Output format: text or json")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	if infoFormat != "text" && infoFormat != "json" {
		return errors.InvalidArgument(fmt.Sprintf("unknown output format %q (use text or json)", infoFormat))
	}

	c, err := openContainer(args[0])
	if err != nil {
		return err
	}
	defer closeContainer(c)

	info, err := c.Info(cmd.Context())
	if err != nil {
		return err
	}

	if infoFormat == "json" {
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode info: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), tui.RenderInfo(args[0], info))
	return nil
}
