package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/jmaese/runnel/internal/cliutil"
	"github.com/jmaese/runnel/internal/job"
)

func newCheckCmd(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the job file and echo the resolved job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := job.Load(cc.jobFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "job %s: ok\n", j.Name)
			fmt.Fprintf(out, "  command:    %s\n", strings.Join(j.Command, " "))
			if j.Workdir != "" {
				fmt.Fprintf(out, "  workdir:    %s\n", j.Workdir)
			}
			fmt.Fprintf(out, "  stopSignal: %s\n", unix.SignalName(j.StopSignal.Signal))
			fmt.Fprintf(out, "  stopGrace:  %s\n", j.StopGrace.Duration)
			if j.PIDFile != "" {
				fmt.Fprintf(out, "  pidfile:    %s\n", j.PIDFile)
			}
			if j.CleanEnv {
				fmt.Fprintf(out, "  cleanEnv:   true\n")
			}
			printEnv(cmd, j)
			return nil
		},
	}
	return cmd
}

func printEnv(cmd *cobra.Command, j *job.Job) {
	redacted := cliutil.RedactEnv(j.Env)
	if len(redacted) == 0 {
		return
	}
	keys := make([]string, 0, len(redacted))
	for k := range redacted {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(cmd.OutOrStdout(), "  env:\n")
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "    %s=%s\n", k, redacted[k])
	}
}
