package cli

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/jmaese/runnel/internal/proc"
)

func TestRunInlineCommandStreamsJSON(t *testing.T) {
	out, err := runRoot(t, "run", "--", "sh", "-c", "echo hi from child")
	if err != nil {
		t.Fatalf("run returned error: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"msg":"hi from child"`) {
		t.Fatalf("missing child output in JSON stream:\n%s", out)
	}
	if !strings.Contains(out, `"source":"stdout"`) {
		t.Fatalf("missing source label:\n%s", out)
	}
	if !strings.Contains(out, "exit status 0") {
		t.Fatalf("missing final status event:\n%s", out)
	}
}

func TestRunPropagatesExitCode(t *testing.T) {
	_, err := runRoot(t, "run", "--", "sh", "-c", "exit 9")
	var exitErr *exitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exitError, got %v", err)
	}
	if got, want := exitErr.code, 9; got != want {
		t.Fatalf("unexpected exit code: got %d want %d", got, want)
	}
}

func TestRunDetachedRequiresPIDFile(t *testing.T) {
	path := writeJobFile(t, "command: [\"sleep\", \"30\"]\n")
	if _, err := runRoot(t, "-f", path, "run", "--detach"); err == nil {
		t.Fatal("expected detach without pidfile to fail")
	}
}

func TestRunDetachedWritesPIDFileAndLeavesChild(t *testing.T) {
	dir := t.TempDir()
	path := writeJobFile(t, "command: [\"sleep\", \"30\"]\npidfile: "+dir+"/job.pid\n")

	out, err := runRoot(t, "-f", path, "run", "--detach")
	if err != nil {
		t.Fatalf("detached run returned error: %v\n%s", err, out)
	}

	pid, alive, err := proc.ReadPIDFile(dir + "/job.pid")
	if err != nil {
		t.Fatalf("read pidfile: %v", err)
	}
	if !alive {
		t.Fatalf("detached child (pid %d) not alive", pid)
	}

	// Not reparented yet, so the child is still ours to clean up.
	if err := unix.Kill(pid, unix.SIGKILL); err != nil {
		t.Fatalf("kill detached child: %v", err)
	}
	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
		t.Fatalf("reap detached child: %v", err)
	}
}

func TestStatusReportsDetachedJob(t *testing.T) {
	dir := t.TempDir()
	jobPath := writeJobFile(t, "command: [\"sleep\", \"30\"]\npidfile: "+dir+"/job.pid\n")

	if _, err := runRoot(t, "-f", jobPath, "run", "--detach"); err != nil {
		t.Fatalf("detached run: %v", err)
	}
	pid, _, err := proc.ReadPIDFile(dir + "/job.pid")
	if err != nil {
		t.Fatalf("read pidfile: %v", err)
	}
	defer func() {
		_ = unix.Kill(pid, unix.SIGKILL)
		var ws unix.WaitStatus
		_, _ = unix.Wait4(pid, &ws, 0, nil)
	}()

	out, err := runRoot(t, "-f", jobPath, "status")
	if err != nil {
		t.Fatalf("status returned error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "running (pid") {
		t.Fatalf("unexpected status output:\n%s", out)
	}
}

func TestStatusStalePIDFile(t *testing.T) {
	dir := t.TempDir()
	if err := proc.WritePIDFile(dir+"/job.pid", 4194304); err != nil {
		t.Fatalf("write pidfile: %v", err)
	}

	out, err := runRoot(t, "status", "--pidfile", dir+"/job.pid")
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.code != 3 {
		t.Fatalf("expected exit code 3 for stale pidfile, got %v", err)
	}
	if !strings.Contains(out, "not running") {
		t.Fatalf("unexpected status output:\n%s", out)
	}
}

func TestExecMirrorsChild(t *testing.T) {
	out, err := runRoot(t, "exec", "--", "sh", "-c", "echo plain output")
	if err != nil {
		t.Fatalf("exec returned error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "plain output") {
		t.Fatalf("missing mirrored output:\n%s", out)
	}
}

func TestExecPropagatesExitCode(t *testing.T) {
	_, err := runRoot(t, "exec", "--", "sh", "-c", "exit 4")
	var exitErr *exitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exitError, got %v", err)
	}
	if got, want := exitErr.code, 4; got != want {
		t.Fatalf("unexpected exit code: got %d want %d", got, want)
	}
}

func TestChildExitErrorMapping(t *testing.T) {
	if got := (&exitError{code: 3}).Error(); got != "exit code 3" {
		t.Fatalf("unexpected message: %q", got)
	}
}
