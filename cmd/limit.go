package cmd

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/audit"
	"github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/tui"
)

var limitCmd = &cobra.Command{
	Use:   "limit <handle> [--disk <size>] [--memory <size>]",
	Short: "Set disk and memory limits",
	Long: `Set a container's disk and/or memory limit. Sizes take binary suffixes
(512M, 2G) or a plain byte count.`,
	Args: cobra.ExactArgs(1),
	RunE: runLimit,
}

var (
	limitDiskFlag   string
	limitMemoryFlag string
)

func init() {
	limitCmd.Flags().StringVar(&limitDiskFlag, "disk", "", "Disk limit")
	limitCmd.Flags().StringVar(&limitMemoryFlag, "memory", "", "Memory limit")
	rootCmd.AddCommand(limitCmd)
}

func runLimit(cmd *cobra.Command, args []string) error {
	handle := args[0]
	if limitDiskFlag == "" && limitMemoryFlag == "" {
		return errors.InvalidArgument("nothing to limit: pass --disk and/or --memory")
	}

	var disk, memory uint64
	var err error
	if limitDiskFlag != "" {
		if disk, err = tui.ParseSize(limitDiskFlag); err != nil {
			return errors.InvalidArgument(fmt.Sprintf("invalid --disk: %v", err))
		}
	}
	if limitMemoryFlag != "" {
		if memory, err = tui.ParseSize(limitMemoryFlag); err != nil {
			return errors.InvalidArgument(fmt.Sprintf("invalid --memory: %v", err))
		}
	}

	c, err := openContainer(handle)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	if limitDiskFlag != "" {
		res, err := c.LimitDisk(cmd.Context(), disk)
		if err != nil {
			return err
		}
		recordEvent(audit.EventLimit, handle, fmt.Sprintf("disk=%d", res.Byte))
		fmt.Fprintf(cmd.OutOrStdout(), "disk: %s\n", units.BytesSize(float64(res.Byte)))
	}
	if limitMemoryFlag != "" {
		res, err := c.LimitMemory(cmd.Context(), memory)
		if err != nil {
			return err
		}
		recordEvent(audit.EventLimit, handle, fmt.Sprintf("memory=%d", res.LimitInBytes))
		fmt.Fprintf(cmd.OutOrStdout(), "memory: %s\n", units.BytesSize(float64(res.LimitInBytes)))
	}
	return nil
}
