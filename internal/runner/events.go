package runner

import (
	"time"

	"github.com/jmaese/runnel/internal/proc"
)

// Log sources.
const (
	SourceStdout = "stdout"
	SourceStderr = "stderr"
	SourceSystem = "system"
)

// EventType classifies notifications emitted by a running instance.
type EventType string

const (
	EventStarted EventType = "started"
	EventLog     EventType = "log"
	EventExited  EventType = "exited"
)

// Event is a single lifecycle or log notification.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Source    string
	PID       int
	Message   string

	// Status is valid on EventExited when Err is nil.
	Status proc.Status
	Err    error
}
