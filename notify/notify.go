package notify

import (
	"context"
	"fmt"
	"time"
)

// EventType identifies what happened.
type EventType string

// Event types sent by the pipekit commands.
const (
	EventArtifactFetched EventType = "artifact_fetched"
	EventArtifactFailed  EventType = "artifact_failed"
	EventLintPassed      EventType = "lint_passed"
	EventLintFailed      EventType = "lint_failed"
	EventCommitsFailed   EventType = "commits_failed"
	EventLicensesFailed  EventType = "licenses_failed"
)

// Severity ranks events. Notifiers wrapped with Threshold only see events
// at or above a minimum severity.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity accepts "info", "warning" (or "warn") and "error".
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	}
	return 0
}

// AtLeast reports whether s is as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return s.rank() >= min.rank()
}

// Event describes the outcome of a pipekit command.
type Event struct {
	Type        EventType      `json:"type"`
	Command     string         `json:"command"`
	PipelineURL string         `json:"pipeline_url,omitempty"`
	Message     string         `json:"message"`
	Severity    Severity       `json:"severity"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(typ EventType, severity Severity, message string) Event {
	return Event{
		Type:      typ,
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Notifier delivers events somewhere.
type Notifier interface {
	// Notify sends a notification. Callers log the returned error and carry
	// on; a failed notification never fails the check itself.
	Notify(ctx context.Context, event Event) error
}
