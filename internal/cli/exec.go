package cli

import (
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jmaese/runnel/internal/metrics"
	"github.com/jmaese/runnel/internal/proc"
)

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec -- command [args...]",
		Short: "Spawn a command with piped stdio and mirror it verbatim",
		Long: `Exec is the thinnest possible wrapper over the process handle: stdin is
piped into the child, its stdout and stderr are copied back byte for byte,
and runnel exits with the child's exit code.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := proc.Spawn(args[0], args[1:], nil)
			if err != nil {
				return err
			}
			metrics.IncSpawns()

			stdin := h.Stdin
			go func() {
				_, _ = io.Copy(stdin, cmd.InOrStdin())
				stdin.Close()
			}()

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, _ = io.Copy(cmd.OutOrStdout(), h.Stdout)
			}()
			go func() {
				defer wg.Done()
				_, _ = io.Copy(cmd.ErrOrStderr(), h.Stderr)
			}()
			wg.Wait()

			st, err := h.Wait(true)
			if err != nil {
				return err
			}
			outcome := metrics.OutcomeExit
			if st.Signaled() {
				outcome = metrics.OutcomeSignal
			}
			metrics.ObserveExit(outcome)

			if !st.Exited() || st.ExitCode() != 0 {
				return childExitError(st)
			}
			return nil
		},
	}
	return cmd
}
