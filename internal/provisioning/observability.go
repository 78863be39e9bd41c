package provisioning

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
)

// Logger is the minimal printf-style logging surface phases write to.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during
// provisioning and teardown.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "network", "cluster")
	Message   string            // Human-readable message
	Resource  string            // Resource key if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a phase failed.
	EventPhaseFailed EventType = "phase.failed"
	// EventPhaseSkipped indicates a phase had nothing to do.
	EventPhaseSkipped EventType = "phase.skipped"

	// EventResourceCreating indicates a resource is being reconciled.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was absent and has been created.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already matched its spec.
	EventResourceExists EventType = "resource.exists"
	// EventResourceRepaired indicates an unhealthy resource was converged.
	EventResourceRepaired EventType = "resource.repaired"
	// EventResourceDegraded indicates a resource settled unhealthy without
	// failing the run.
	EventResourceDegraded EventType = "resource.degraded"
	// EventResourceFailed indicates resource convergence failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted successfully.
	EventResourceDeleted EventType = "resource.deleted"
	// EventResourceAbsent indicates a delete found nothing to remove.
	EventResourceAbsent EventType = "resource.absent"
	// EventResourceKept indicates a shared resource teardown deliberately
	// left in place.
	EventResourceKept EventType = "resource.kept"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// EventForOutcome maps a reconcile outcome to the event type announcing it.
func EventForOutcome(outcome aws.Outcome) EventType {
	switch outcome {
	case aws.OutcomeCreated:
		return EventResourceCreated
	case aws.OutcomePresent:
		return EventResourceExists
	case aws.OutcomeRepaired:
		return EventResourceRepaired
	case aws.OutcomeDeleted:
		return EventResourceDeleted
	case aws.OutcomeAbsent:
		return EventResourceAbsent
	default:
		return EventResourceFailed
	}
}

func outcomeMessage(kind string, outcome aws.Outcome) string {
	switch outcome {
	case aws.OutcomeCreated:
		return fmt.Sprintf("%s created", kind)
	case aws.OutcomePresent:
		return fmt.Sprintf("%s already exists", kind)
	case aws.OutcomeRepaired:
		return fmt.Sprintf("%s repaired", kind)
	case aws.OutcomeDeleted:
		return fmt.Sprintf("%s deleted", kind)
	case aws.OutcomeAbsent:
		return fmt.Sprintf("%s already absent", kind)
	default:
		return fmt.Sprintf("%s in unexpected state %q", kind, string(outcome))
	}
}

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		contextFields: make(map[string]string),
	}
}

// Printf implements the Logger interface.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Merge context fields
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}

	log.Print(o.formatEvent(event))
}

// Progress implements Observer interface.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	if total == 0 {
		log.Printf("[%s] Progress: %d/%d", phase, current, total)
		return
	}
	percentage := (current * 100) / total
	log.Printf("[%s] Progress: %d/%d (%d%%)", phase, current, total, percentage)
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	maps.Copy(newFields, o.contextFields)
	maps.Copy(newFields, fields)
	return &ConsoleObserver{
		contextFields: newFields,
	}
}

// formatEvent formats an event for console output. Fields print in sorted
// order so runs diff cleanly.
func (o *ConsoleObserver) formatEvent(event Event) string {
	var parts []string

	parts = append(parts, string(event.Type))

	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}

	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}

	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		fieldParts := make([]string, 0, len(event.Fields))
		for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceCreating logs the start of one resource's reconcile.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("reconciling %s", resourceType),
		Fields: map[string]string{
			"kind": resourceType,
		},
	})
}

// LogResourceDeleting logs the start of one resource's deletion.
func LogResourceDeleting(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("deleting %s", resourceType),
		Fields: map[string]string{
			"kind": resourceType,
		},
	})
}
