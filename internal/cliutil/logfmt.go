package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/jmaese/runnel/internal/runner"
)

// LogRecord represents a structured log event ready for JSON encoding.
type LogRecord struct {
	Timestamp time.Time `json:"ts"`
	Job       string    `json:"job"`
	Level     string    `json:"level"`
	Message   string    `json:"msg"`
	Source    string    `json:"source"`
}

// NewLogRecord converts a runner event into a structured log record.
func NewLogRecord(jobName string, event runner.Event) LogRecord {
	level := inferLogLevel(event.Message)
	if level == "" {
		if event.Source == runner.SourceStderr {
			level = "warn"
		} else if event.Err != nil {
			level = "error"
		} else {
			level = "info"
		}
	}
	source := event.Source
	if source == "" {
		source = runner.SourceSystem
	}
	return LogRecord{
		Timestamp: event.Timestamp,
		Job:       jobName,
		Level:     level,
		Message:   event.Message,
		Source:    source,
	}
}

var levelTokenPattern = regexp.MustCompile(`(?i)\b(error|warn|info)\b`)

func inferLogLevel(message string) string {
	matches := levelTokenPattern.FindStringSubmatch(message)
	if len(matches) < 2 {
		return ""
	}
	switch strings.ToLower(matches[1]) {
	case "error":
		return "error"
	case "warn":
		return "warn"
	case "info":
		return "info"
	default:
		return ""
	}
}

// EncodeLogEvent encodes a log event to JSON, reporting errors to stderr if needed.
func EncodeLogEvent(enc *json.Encoder, stderr io.Writer, jobName string, event runner.Event) {
	if enc == nil {
		return
	}
	record := NewLogRecord(jobName, event)
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := enc.Encode(&record); err != nil {
		fmt.Fprintf(stderr, "error: encode log: %v\n", err)
	}
}

// FormatPlainEvent renders an event the way a terminal user wants to read
// it: timestamp, source tag, message.
func FormatPlainEvent(jobName string, event runner.Event) string {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("%s %s[%s] %s", ts.Format("15:04:05.000"), jobName, event.Source, event.Message)
}
