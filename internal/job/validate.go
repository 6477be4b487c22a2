package job

import (
	"fmt"
	"os"
	"strings"
)

// Validate checks that the job can actually be launched.
func (j *Job) Validate() error {
	if len(j.Command) == 0 || strings.TrimSpace(j.Command[0]) == "" {
		return fmt.Errorf("job.command: a program name is required")
	}
	for i, arg := range j.Command {
		if strings.ContainsRune(arg, 0) {
			return fmt.Errorf("job.command[%d]: argument contains NUL byte", i)
		}
	}
	if j.Workdir != "" {
		info, err := os.Stat(j.Workdir)
		if err != nil {
			return fmt.Errorf("job.workdir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("job.workdir: %s is not a directory", j.Workdir)
		}
	}
	if j.StopGrace.Duration < 0 {
		return fmt.Errorf("job.stopGrace: must not be negative")
	}
	for k := range j.Env {
		if k == "" || strings.ContainsRune(k, '=') {
			return fmt.Errorf("job.env: invalid variable name %q", k)
		}
	}
	return nil
}
