package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/jmaese/runnel/internal/job"
	"github.com/jmaese/runnel/internal/proc"
)

func newStopCmd(cc *commandContext) *cobra.Command {
	var (
		pidfilePath string
		signalName  string
		waitTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Signal a detached job and wait for it to exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, path, name, err := cc.resolveTarget(pidfilePath)
			if err != nil {
				return err
			}
			pid, alive, err := proc.ReadPIDFile(path)
			if err != nil {
				return err
			}
			if !alive {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not running, removing stale pidfile\n", name)
				return os.Remove(path)
			}

			sig := unix.SIGTERM
			if j != nil && j.StopSignal.IsSet() {
				sig = j.StopSignal.Signal
			}
			if signalName != "" {
				sig, err = job.ParseSignal(signalName)
				if err != nil {
					return err
				}
			}

			if err := unix.Kill(pid, sig); err != nil {
				return &proc.SystemError{Op: "kill", Err: err}
			}

			// The job is not our child, so there is nothing to reap; poll
			// for the pid to disappear instead.
			deadline := time.Now().Add(waitTimeout)
			for proc.ProcessExists(pid) {
				if time.Now().After(deadline) {
					return fmt.Errorf("%s: pid %d still alive after %s", name, pid, waitTimeout)
				}
				time.Sleep(50 * time.Millisecond)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: stopped (pid %d)\n", name, pid)
			return os.Remove(path)
		},
	}

	cmd.Flags().StringVar(&pidfilePath, "pidfile", "", "Pidfile to act on (defaults to the job file's pidfile)")
	cmd.Flags().StringVar(&signalName, "signal", "", "Signal to send (defaults to the job's stop signal, or SIGTERM)")
	cmd.Flags().DurationVar(&waitTimeout, "timeout", 10*time.Second, "How long to wait for the process to exit")
	return cmd
}
