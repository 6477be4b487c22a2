package proc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Status is the raw wait status of a reaped child.
type Status struct {
	ws unix.WaitStatus
}

// Exited returns true if the child exited normally.
func (s Status) Exited() bool {
	return s.ws.Exited()
}

// ExitCode returns the exit code of a normally exited child, or -1 if the
// child was killed by a signal or has not been reaped.
func (s Status) ExitCode() int {
	if s.ws.Exited() {
		return s.ws.ExitStatus()
	}
	return -1
}

// Signaled returns true if the child was killed by a signal.
func (s Status) Signaled() bool {
	return s.ws.Signaled()
}

// Signal returns the signal that killed the child, or -1 if it exited
// normally.
func (s Status) Signal() unix.Signal {
	if s.ws.Signaled() {
		return s.ws.Signal()
	}
	return -1
}

// Sys exposes the raw wait status for callers that need the platform bits.
func (s Status) Sys() unix.WaitStatus {
	return s.ws
}

func (s Status) String() string {
	switch {
	case s.ws.Exited():
		return fmt.Sprintf("exit status %d", s.ws.ExitStatus())
	case s.ws.Signaled():
		return "signal: " + unix.SignalName(s.ws.Signal())
	case s.ws.Stopped():
		return "stopped: " + unix.SignalName(s.ws.StopSignal())
	default:
		return fmt.Sprintf("wait status %#x", uint32(s.ws))
	}
}
