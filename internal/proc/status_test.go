package proc

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestStatusStringForExit(t *testing.T) {
	h, err := Spawn("sh", []string{"-c", "exit 3"}, nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	defer h.Close()

	st, err := h.Wait(true)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got, want := st.String(), "exit status 3"; got != want {
		t.Fatalf("unexpected status string: got %q want %q", got, want)
	}
	if st.Signaled() || st.Signal() != -1 {
		t.Fatalf("exit status reported as signal death: %v", st)
	}
}

func TestStatusStringForSignal(t *testing.T) {
	h, err := Spawn("sleep", []string{"30"}, nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	defer h.Close()

	st, err := h.Kill(unix.SIGKILL)
	if err != nil {
		t.Fatalf("kill: %v", err)
	}
	if got, want := st.String(), "signal: SIGKILL"; got != want {
		t.Fatalf("unexpected status string: got %q want %q", got, want)
	}
	if st.Exited() || st.ExitCode() != -1 {
		t.Fatalf("signal death reported as normal exit: %v", st)
	}
}

func TestSystemErrorErrno(t *testing.T) {
	err := &SystemError{Op: "kill", Err: unix.ESRCH}
	errno, ok := err.Errno()
	if !ok || errno != unix.ESRCH {
		t.Fatalf("unexpected errno: %v ok=%v", errno, ok)
	}
	if got, want := err.Error(), "kill: no such process"; got != want {
		t.Fatalf("unexpected message: got %q want %q", got, want)
	}
}
