package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/app"
	"github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/tui"
)

var eventsCmd = &cobra.Command{
	Use:   "events <handle>",
	Short: "Show the recorded lifecycle events of a container",
	Long: `Show the recorded lifecycle events of a container. With --clear the
event log is deleted instead, typically once the container is destroyed.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

var eventsClear bool

func init() {
	eventsCmd.Flags().BoolVar(&eventsClear, "clear", false, "Delete the event log")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	handle := args[0]

	if eventsClear {
		if err := app.Default.Audit.Remove(handle); err != nil {
			return fmt.Errorf("failed to clear events for %s: %w", handle, err)
		}
		logSuccess("Cleared events for %s", handle)
		return nil
	}

	events, err := app.Default.Audit.Events(handle)
	if err != nil {
		return errors.InvalidArgument(err.Error())
	}

	if len(events) == 0 {
		logInfo("No events recorded for %s", handle)
	}
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderEvents(handle, events, time.Now()))
	return nil
}
