package proc

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// WritePIDFile records pid at path, replacing any previous content.
func WritePIDFile(path string, pid int) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write pidfile: %w", err)
	}
	return nil
}

// ReadPIDFile reads a pid from path and probes whether that process still
// exists. The probe uses kill(pid, 0); EPERM counts as alive, since the
// process exists but is not ours to signal.
func ReadPIDFile(path string) (pid int, alive bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false, fmt.Errorf("read pidfile: %w", err)
	}

	content := strings.TrimSpace(string(data))
	// Only the first line carries the pid.
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = strings.TrimSpace(content[:idx])
	}
	pid, err = strconv.Atoi(content)
	if err != nil {
		return 0, false, fmt.Errorf("pidfile %s: invalid pid %q", path, content)
	}
	if pid <= 0 {
		return 0, false, fmt.Errorf("pidfile %s: invalid pid %d", path, pid)
	}

	return pid, ProcessExists(pid), nil
}

// ProcessExists reports whether a process with the given pid currently
// exists. A pid that is visible but unsignalable still counts.
func ProcessExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
