package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/audit"
	"github.com/firefly-engineering/warden-ctl/internal/logging"
)

var spawnCmd = &cobra.Command{
	Use:   "spawn <handle> [--script <script> | -- <command> [args...]]",
	Short: "Start a background job in a container",
	Long: `Start a command in a container without waiting for it. The daemon's
job id is printed on stdout.

Examples:
  warden-ctl spawn handle-1 --nofile 1024 -- ./server --port 8080`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpawn,
}

var (
	spawnScript string
	spawnNofile uint64
	spawnNproc  uint64
)

func init() {
	spawnCmd.Flags().StringVar(&spawnScript, "script", "", "Shell script to run instead of a command")
	spawnCmd.Flags().Uint64Var(&spawnNofile, "nofile", 0, "Open file limit for the job (0 for the daemon default)")
	spawnCmd.Flags().Uint64Var(&spawnNproc, "nproc", 0, "Process limit for the job (0 for the daemon default)")
	rootCmd.AddCommand(spawnCmd)
}

func runSpawn(cmd *cobra.Command, args []string) error {
	handle := args[0]
	script, err := scriptFromArgs(spawnScript, args[1:])
	if err != nil {
		return err
	}

	c, err := openContainer(handle)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	logging.Debug("spawning job", "handle", handle, "script", script, "nofile", spawnNofile, "nproc", spawnNproc)

	res, err := c.Spawn(cmd.Context(), script, spawnNofile, spawnNproc)
	if err != nil {
		return err
	}

	recordEvent(audit.EventSpawn, handle, fmt.Sprintf("job_id=%d script=%s", res.JobID, script))
	fmt.Fprintln(cmd.OutOrStdout(), res.JobID)
	return nil
}
