package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmaese/runnel/internal/proc"
)

func newStatusCmd(cc *commandContext) *cobra.Command {
	var pidfilePath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report liveness of a detached job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, name, err := cc.resolveTarget(pidfilePath)
			if err != nil {
				return err
			}
			pid, alive, err := proc.ReadPIDFile(path)
			if err != nil {
				return err
			}
			if !alive {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not running (stale pid %d)\n", name, pid)
				return &exitError{code: 3}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: running (pid %d)\n", name, pid)
			return nil
		},
	}

	cmd.Flags().StringVar(&pidfilePath, "pidfile", "", "Pidfile to inspect (defaults to the job file's pidfile)")
	return cmd
}
