package cmd

import (
	"fmt"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/audit"
	"github.com/firefly-engineering/warden-ctl/internal/container"
	"github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run <handle> [--script <script> | -- <command> [args...]]",
	Short: "Run a command in a container and wait for it",
	Long: `Run a command in a container and wait for it to finish. The command's
stdout and stderr are copied to ours; a nonzero exit status fails the
command.

Examples:
  warden-ctl run handle-1 -- ls -la /bar
  warden-ctl run handle-1 --script 'cd /bar && make test'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runScript     string
	runPrivileged bool
)

func init() {
	runCmd.Flags().StringVar(&runScript, "script", "", "Shell script to run instead of a command")
	runCmd.Flags().BoolVar(&runPrivileged, "privileged", false, "Run as the container's privileged user")
	rootCmd.AddCommand(runCmd)
}

// scriptFromArgs builds the script body from --script or the argv after
// the handle.
func scriptFromArgs(script string, argv []string) (string, error) {
	switch {
	case script != "" && len(argv) > 0:
		return "", errors.InvalidArgument("use either --script or a command, not both")
	case script != "":
		return script, nil
	case len(argv) > 0:
		return shellquote.Join(argv...), nil
	}
	return "", errors.InvalidArgument("nothing to run: pass a command after -- or --script")
}

func runRun(cmd *cobra.Command, args []string) error {
	handle := args[0]
	script, err := scriptFromArgs(runScript, args[1:])
	if err != nil {
		return err
	}

	c, err := openContainer(handle)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	logging.Debug("running script", "handle", handle, "script", script, "privileged", runPrivileged)

	res, err := c.RunScript(cmd.Context(), container.ConnApp, script, runPrivileged)
	if err != nil {
		var execErr *errors.ExecutionError
		if errors.As(err, &execErr) {
			fmt.Fprint(cmd.OutOrStdout(), execErr.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), execErr.Stderr)
			recordEvent(audit.EventRun, handle, fmt.Sprintf("exit_status=%d script=%s", execErr.ExitStatus, script))
		}
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
	fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
	recordEvent(audit.EventRun, handle, "exit_status=0 script="+script)
	return nil
}
