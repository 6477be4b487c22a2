package cliutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jmaese/runnel/internal/runner"
)

func TestEncodeLogEventInfersLevel(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		source   string
		expected string
	}{
		{name: "errorToken", message: "[ERROR] failed to start", source: runner.SourceStdout, expected: "error"},
		{name: "warnToken", message: "WARN disk almost full", source: runner.SourceStdout, expected: "warn"},
		{name: "infoToken", message: "info: worker ready", source: runner.SourceStdout, expected: "info"},
		{name: "noTokenDefaults", message: "worker started", source: runner.SourceStdout, expected: "info"},
		{name: "stderrDefaultsWarn", message: "something odd", source: runner.SourceStderr, expected: "warn"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			var errBuf bytes.Buffer

			event := runner.Event{
				Timestamp: time.Unix(0, 0),
				Type:      runner.EventLog,
				Source:    tc.source,
				Message:   tc.message,
			}
			EncodeLogEvent(json.NewEncoder(&out), &errBuf, "worker", event)

			if errBuf.Len() != 0 {
				t.Fatalf("unexpected stderr output: %s", errBuf.String())
			}

			var record LogRecord
			if err := json.Unmarshal(out.Bytes(), &record); err != nil {
				t.Fatalf("failed to unmarshal log record: %v", err)
			}
			if record.Level != tc.expected {
				t.Fatalf("expected level %q, got %q", tc.expected, record.Level)
			}
			if record.Job != "worker" {
				t.Fatalf("expected job name on record, got %q", record.Job)
			}
		})
	}
}

func TestNewLogRecordFillsSource(t *testing.T) {
	record := NewLogRecord("worker", runner.Event{Message: "spawned"})
	if record.Source != runner.SourceSystem {
		t.Fatalf("expected system source, got %q", record.Source)
	}
}

func TestFormatPlainEvent(t *testing.T) {
	event := runner.Event{
		Timestamp: time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC),
		Type:      runner.EventLog,
		Source:    runner.SourceStdout,
		Message:   "ready",
	}
	got := FormatPlainEvent("worker", event)
	if !strings.Contains(got, "worker[stdout] ready") {
		t.Fatalf("unexpected plain format: %q", got)
	}
	if !strings.HasPrefix(got, "12:30:45") {
		t.Fatalf("expected timestamp prefix, got %q", got)
	}
}
