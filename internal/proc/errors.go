package proc

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrRunning is returned by a non-blocking Wait when the child has not
// changed state yet. It is the only Wait outcome that leaves the handle
// open.
var ErrRunning = errors.New("process still running")

// SystemError wraps the OS error from a failed system call, tagged with the
// operation that failed.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// Errno returns the underlying errno when the wrapped error carries one.
func (e *SystemError) Errno() (unix.Errno, bool) {
	var errno unix.Errno
	if errors.As(e.Err, &errno) {
		return errno, true
	}
	return 0, false
}
