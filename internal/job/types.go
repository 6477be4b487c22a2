package job

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultStopGrace is how long a job is given to exit after its stop signal
// before being killed outright.
const DefaultStopGrace = 5 * time.Second

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
	explicit bool
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	d.explicit = true
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsSet reports whether the duration was explicitly provided or non-zero.
func (d Duration) IsSet() bool {
	return d.explicit || d.Duration != 0
}

// Signal wraps unix.Signal for YAML unmarshalling. It accepts symbolic
// names with or without the SIG prefix, and raw signal numbers.
type Signal struct {
	unix.Signal
	explicit bool
}

// UnmarshalText parses a textual signal, accepting empty strings.
func (s *Signal) UnmarshalText(text []byte) error {
	s.explicit = true
	if len(text) == 0 {
		s.Signal = 0
		return nil
	}
	sig, err := ParseSignal(string(text))
	if err != nil {
		return err
	}
	s.Signal = sig
	return nil
}

// MarshalText renders the signal by its symbolic name.
func (s Signal) MarshalText() ([]byte, error) {
	return []byte(unix.SignalName(s.Signal)), nil
}

// IsSet reports whether the signal was explicitly provided or non-zero.
func (s Signal) IsSet() bool {
	return s.explicit || s.Signal != 0
}

// ParseSignal resolves a signal given as "SIGTERM", "term" or "15".
func ParseSignal(name string) (unix.Signal, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, fmt.Errorf("empty signal name")
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		if n <= 0 || n > 64 {
			return 0, fmt.Errorf("invalid signal number %d", n)
		}
		return unix.Signal(n), nil
	}
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SIG") {
		upper = "SIG" + upper
	}
	if sig := unix.SignalNum(upper); sig != 0 {
		return sig, nil
	}
	return 0, fmt.Errorf("unknown signal %q", name)
}

// Job describes a single supervised command.
type Job struct {
	Name        string            `yaml:"name"`
	Command     []string          `yaml:"command"`
	Workdir     string            `yaml:"workdir"`
	Env         map[string]string `yaml:"env"`
	EnvFromFile string            `yaml:"envFromFile"`
	CleanEnv    bool              `yaml:"cleanEnv"`
	StopSignal  Signal            `yaml:"stopSignal"`
	StopGrace   Duration          `yaml:"stopGrace"`
	PIDFile     string            `yaml:"pidfile"`
}

// FromArgs builds a job for an inline command line, with defaults applied.
func FromArgs(args []string) *Job {
	j := &Job{Command: args}
	j.ApplyDefaults()
	return j
}

// ApplyDefaults fills in the name, stop signal and stop grace when absent.
func (j *Job) ApplyDefaults() {
	if j.Name == "" && len(j.Command) > 0 {
		j.Name = filepath.Base(j.Command[0])
	}
	if !j.StopSignal.IsSet() {
		j.StopSignal = Signal{Signal: unix.SIGTERM}
	}
	if !j.StopGrace.IsSet() {
		j.StopGrace = Duration{Duration: DefaultStopGrace}
	}
}

// ChildEnv materializes the child's environment as "key=value" pairs in
// stable order. A nil return means the child inherits the parent
// environment unchanged.
func (j *Job) ChildEnv() []string {
	if len(j.Env) == 0 && !j.CleanEnv {
		return nil
	}
	keys := make([]string, 0, len(j.Env))
	for k := range j.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+j.Env[k])
	}
	if j.CleanEnv {
		return pairs
	}
	return append(os.Environ(), pairs...)
}
