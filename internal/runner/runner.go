// Package runner supervises a single job spawned through proc: it streams
// the child's output line by line, reaps it exactly once, and implements
// graceful stop with a bounded escalation to SIGKILL.
package runner

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jmaese/runnel/internal/job"
	"github.com/jmaese/runnel/internal/metrics"
	"github.com/jmaese/runnel/internal/proc"
)

const maxLineBytes = 1024 * 1024

// Option configures Start.
type Option func(*options)

type options struct {
	stdin io.Reader
}

// WithStdin streams r into the child's stdin, closing it when r is
// exhausted. Without this option the child's stdin is closed immediately
// so it sees EOF on first read.
func WithStdin(r io.Reader) Option {
	return func(o *options) {
		o.stdin = r
	}
}

// Instance is one running job. The Events channel must be drained by the
// caller; it is closed after the final EventExited.
type Instance struct {
	job    *job.Job
	handle *proc.Handle
	pid    int

	events chan Event
	done   chan struct{}

	mu      sync.Mutex
	status  proc.Status
	waitErr error
}

// Start launches the job and begins streaming its output.
func Start(j *job.Job, opts ...Option) (*Instance, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}

	h, err := proc.SpawnIn(j.Workdir, j.Command[0], j.Command[1:], j.ChildEnv())
	if err != nil {
		return nil, err
	}
	metrics.IncSpawns()

	inst := &Instance{
		job:    j,
		handle: h,
		pid:    h.PID(),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}

	if o.stdin == nil {
		h.Stdin.Close()
	} else {
		stdin := h.Stdin
		go func() {
			_, _ = io.Copy(stdin, o.stdin)
			stdin.Close()
		}()
	}

	inst.emit(Event{
		Timestamp: time.Now(),
		Type:      EventStarted,
		Source:    SourceSystem,
		PID:       inst.pid,
		Message:   "started " + j.Name,
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go inst.streamLines(h.Stdout, SourceStdout, &wg)
	go inst.streamLines(h.Stderr, SourceStderr, &wg)

	go func() {
		// Both streams hit EOF once the child is gone; reap after so the
		// scanners never race the stream teardown in Wait.
		wg.Wait()
		st, err := h.Wait(true)

		inst.mu.Lock()
		inst.status, inst.waitErr = st, err
		inst.mu.Unlock()

		outcome := metrics.OutcomeExit
		if err == nil && st.Signaled() {
			outcome = metrics.OutcomeSignal
		}
		metrics.ObserveExit(outcome)

		evt := Event{
			Timestamp: time.Now(),
			Type:      EventExited,
			Source:    SourceSystem,
			PID:       inst.pid,
		}
		if err != nil {
			evt.Err = err
			evt.Message = "wait failed: " + err.Error()
		} else {
			evt.Status = st
			evt.Message = st.String()
		}
		inst.emit(evt)
		close(inst.events)
		close(inst.done)
	}()

	return inst, nil
}

// PID returns the pid of the supervised child.
func (in *Instance) PID() int {
	return in.pid
}

// Job returns the job this instance was started from.
func (in *Instance) Job() *job.Job {
	return in.job
}

// Events returns the instance's notification channel. It carries one
// EventStarted, zero or more EventLog entries, and a final EventExited,
// then closes.
func (in *Instance) Events() <-chan Event {
	return in.events
}

// Wait blocks until the child has been reaped (or ctx expires) and returns
// its final status.
func (in *Instance) Wait(ctx context.Context) (proc.Status, error) {
	select {
	case <-ctx.Done():
		return proc.Status{}, ctx.Err()
	case <-in.done:
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.status, in.waitErr
}

// Stop terminates the job: stop signal first, then SIGKILL once the grace
// period elapses. Reaping stays with the instance's own wait loop, so Stop
// only signals. It is idempotent and safe to call on an already-exited
// instance.
func (in *Instance) Stop(ctx context.Context) error {
	select {
	case <-in.done:
		return nil
	default:
	}

	if err := unix.Kill(in.pid, in.job.StopSignal.Signal); err != nil && !errors.Is(err, unix.ESRCH) {
		return &proc.SystemError{Op: "kill", Err: err}
	}

	if grace := in.job.StopGrace.Duration; grace > 0 {
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-in.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := unix.Kill(in.pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return &proc.SystemError{Op: "kill", Err: err}
	}
	select {
	case <-in.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (in *Instance) emit(evt Event) {
	in.events <- evt
}

func (in *Instance) streamLines(r io.Reader, source string, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		in.emit(Event{
			Timestamp: time.Now(),
			Type:      EventLog,
			Source:    source,
			PID:       in.pid,
			Message:   scanner.Text(),
		})
	}
}
