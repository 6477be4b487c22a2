package cli

import (
	stdcontext "context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jmaese/runnel/internal/cliutil"
	"github.com/jmaese/runnel/internal/job"
	"github.com/jmaese/runnel/internal/metrics"
	"github.com/jmaese/runnel/internal/proc"
	"github.com/jmaese/runnel/internal/runner"
)

func newRunCmd(cc *commandContext) *cobra.Command {
	var (
		detach      bool
		timeout     time.Duration
		metricsAddr string
		jsonLogs    bool
	)

	cmd := &cobra.Command{
		Use:   "run [-- command args...]",
		Short: "Run a job in the foreground, streaming its output",
		Long: `Run launches the job from the job file (or an inline command line after --)
as a child process with fully piped stdio and streams its output until it
exits. Interrupting runnel stops the job gracefully: stop signal first,
SIGKILL after the grace period.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := cc.loadJob(args)
			if err != nil {
				return err
			}

			if detach {
				return runDetached(cmd, j)
			}

			if metricsAddr != "" {
				go serveMetrics(metricsAddr)
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel stdcontext.CancelFunc
				ctx, cancel = stdcontext.WithTimeout(ctx, timeout)
				defer cancel()
			}

			in, err := runner.Start(j, runner.WithStdin(cmd.InOrStdin()))
			if err != nil {
				return err
			}

			go func() {
				<-ctx.Done()
				stopCtx, cancel := stdcontext.WithTimeout(stdcontext.Background(), j.StopGrace.Duration+5*time.Second)
				defer cancel()
				_ = in.Stop(stopCtx)
			}()

			out := cmd.OutOrStdout()
			plain := !jsonLogs && cliutil.Interactive(out)
			enc := json.NewEncoder(out)
			for evt := range in.Events() {
				if plain {
					fmt.Fprintln(out, cliutil.FormatPlainEvent(j.Name, evt))
				} else {
					cliutil.EncodeLogEvent(enc, cmd.ErrOrStderr(), j.Name, evt)
				}
			}

			st, err := in.Wait(stdcontext.Background())
			if err != nil {
				return err
			}
			if !st.Exited() || st.ExitCode() != 0 {
				return childExitError(st)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "Start the job, write its pidfile and return without supervising it")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop the job after this duration (0 disables)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&jsonLogs, "json", false, "Force JSON log output even on a terminal")
	return cmd
}

// runDetached spawns the job, records its pid and relinquishes ownership:
// the child is never signaled or reaped by this process. The parent pipe
// ends are closed, so a detached job should write to files or stay quiet.
func runDetached(cmd *cobra.Command, j *job.Job) error {
	if j.PIDFile == "" {
		return fmt.Errorf("job %s: detached runs require a pidfile", j.Name)
	}

	h, err := proc.SpawnIn(j.Workdir, j.Command[0], j.Command[1:], j.ChildEnv())
	if err != nil {
		return err
	}
	metrics.IncSpawns()

	pid := h.Detach()
	// Only the streams are left; the detached pid is out of Close's reach.
	h.Close()

	if err := proc.WritePIDFile(j.PIDFile, pid); err != nil {
		return fmt.Errorf("job started (pid %d) but pidfile not written: %w", pid, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "started %s (pid %d), pidfile %s\n", j.Name, pid, j.PIDFile)
	return nil
}

func serveMetrics(addr string) {
	handler := promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})
	if err := http.ListenAndServe(addr, handler); err != nil {
		fmt.Fprintf(os.Stderr, "metrics listener: %v\n", err)
	}
}
