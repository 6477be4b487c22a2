package job

import (
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  unix.Signal
		err   bool
	}{
		{name: "fullName", input: "SIGTERM", want: unix.SIGTERM},
		{name: "shortName", input: "TERM", want: unix.SIGTERM},
		{name: "lowercase", input: "int", want: unix.SIGINT},
		{name: "number", input: "9", want: unix.SIGKILL},
		{name: "padded", input: "  HUP ", want: unix.SIGHUP},
		{name: "unknown", input: "SIGWAT", err: true},
		{name: "zero", input: "0", err: true},
		{name: "negative", input: "-9", err: true},
		{name: "empty", input: "", err: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSignal(tc.input)
			if tc.err {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected signal: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestChildEnvCleanEnv(t *testing.T) {
	j := &Job{
		Command:  []string{"true"},
		Env:      map[string]string{"B": "2", "A": "1"},
		CleanEnv: true,
	}
	env := j.ChildEnv()
	if got, want := strings.Join(env, ","), "A=1,B=2"; got != want {
		t.Fatalf("unexpected clean env: got %q want %q", got, want)
	}
}

func TestChildEnvMergesOverInherited(t *testing.T) {
	t.Setenv("RUNNEL_TEST_MARKER", "present")
	j := &Job{
		Command: []string{"true"},
		Env:     map[string]string{"EXTRA": "yes"},
	}
	env := j.ChildEnv()
	if env == nil {
		t.Fatal("expected materialized environment")
	}
	var sawMarker, sawExtra bool
	for _, kv := range env {
		switch kv {
		case "RUNNEL_TEST_MARKER=present":
			sawMarker = true
		case "EXTRA=yes":
			sawExtra = true
		}
	}
	if !sawMarker || !sawExtra {
		t.Fatalf("environment missing entries: marker=%v extra=%v", sawMarker, sawExtra)
	}
}

func TestFromArgsDefaults(t *testing.T) {
	j := FromArgs([]string{"/usr/local/bin/worker", "--once"})
	if got, want := j.Name, "worker"; got != want {
		t.Fatalf("unexpected name: got %q want %q", got, want)
	}
	if got, want := j.StopSignal.Signal, unix.SIGTERM; got != want {
		t.Fatalf("unexpected stop signal: got %v want %v", got, want)
	}
	if err := j.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
