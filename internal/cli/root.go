package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmaese/runnel/internal/job"
	"github.com/jmaese/runnel/internal/proc"
)

// NewRootCmd constructs the runnel command tree.
func NewRootCmd() *cobra.Command {
	cc := &commandContext{}

	root := &cobra.Command{
		Use:   "runnel",
		Short: "Run one command as a supervised child with piped stdio",
	}
	root.PersistentFlags().StringVarP(&cc.jobFile, "file", "f", "job.yaml", "Path to job definition")

	root.AddCommand(newRunCmd(cc))
	root.AddCommand(newExecCmd())
	root.AddCommand(newStatusCmd(cc))
	root.AddCommand(newStopCmd(cc))
	root.AddCommand(newCheckCmd(cc))
	root.AddCommand(newWatchCmd(cc))

	root.SilenceUsage = true
	root.SilenceErrors = true
	return root
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.msg != "" {
				fmt.Fprintln(os.Stderr, exitErr.msg)
			}
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type commandContext struct {
	jobFile string
}

// loadJob resolves the job to act on: an inline command line when args are
// present, the configured job file otherwise.
func (cc *commandContext) loadJob(args []string) (*job.Job, error) {
	if len(args) > 0 {
		j := job.FromArgs(args)
		if err := j.Validate(); err != nil {
			return nil, err
		}
		return j, nil
	}
	return job.Load(cc.jobFile)
}

// resolveTarget locates the pidfile (and, when it comes from a job file,
// the job) that status/stop should act on.
func (cc *commandContext) resolveTarget(pidfileFlag string) (*job.Job, string, string, error) {
	if pidfileFlag != "" {
		name := filepath.Base(pidfileFlag)
		return nil, pidfileFlag, name, nil
	}
	j, err := job.Load(cc.jobFile)
	if err != nil {
		return nil, "", "", err
	}
	if j.PIDFile == "" {
		return nil, "", "", fmt.Errorf("job %s declares no pidfile; pass --pidfile", j.Name)
	}
	return j, j.PIDFile, j.Name, nil
}

// exitError carries a specific process exit code through cobra's error
// return. An empty msg exits silently.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("exit code %d", e.code)
}

// childExitError maps a child's final status onto the conventional shell
// exit code: the code itself for normal exits, 128+signal for signal
// deaths (reported on stderr, like a shell would).
func childExitError(st proc.Status) *exitError {
	if st.Signaled() {
		return &exitError{code: 128 + int(st.Signal()), msg: st.String()}
	}
	if code := st.ExitCode(); code > 0 {
		return &exitError{code: code}
	}
	return &exitError{code: 1}
}
