package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmaese/runnel/internal/cliutil"
	"github.com/jmaese/runnel/internal/runner"
	"github.com/jmaese/runnel/internal/tui"
)

func newWatchCmd(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [-- command args...]",
		Short: "Run a job under the interactive viewer",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cliutil.Interactive(os.Stdout) {
				return fmt.Errorf("watch requires an interactive terminal")
			}
			j, err := cc.loadJob(args)
			if err != nil {
				return err
			}
			in, err := runner.Start(j)
			if err != nil {
				return err
			}
			st, err := tui.Run(cmd.Context(), j.Name, in)
			if err != nil {
				return err
			}
			if !st.Exited() || st.ExitCode() != 0 {
				return childExitError(st)
			}
			return nil
		},
	}
	return cmd
}
