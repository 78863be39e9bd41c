package testing

import (
	"fmt"

	"github.com/ekstrap/ekstrap/internal/provisioning"
)

// RecordingObserver implements provisioning.Observer and records everything
// for assertions.
type RecordingObserver struct {
	Events   []provisioning.Event
	Messages []string
}

// NewRecordingObserver creates an empty recording observer.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

// Printf implements the provisioning.Logger interface.
func (o *RecordingObserver) Printf(format string, v ...interface{}) {
	o.Messages = append(o.Messages, fmt.Sprintf(format, v...))
}

// Event implements the provisioning.Observer interface.
func (o *RecordingObserver) Event(event provisioning.Event) {
	o.Events = append(o.Events, event)
}

// Progress implements the provisioning.Observer interface.
func (o *RecordingObserver) Progress(phase string, current, total int) {
	o.Events = append(o.Events, provisioning.Event{
		Type:    provisioning.EventProgress,
		Phase:   phase,
		Message: fmt.Sprintf("%d/%d", current, total),
	})
}

// WithFields implements the provisioning.Observer interface. The recording
// observer keeps a single event stream, so fields are not scoped.
func (o *RecordingObserver) WithFields(_ map[string]string) provisioning.Observer {
	return o
}

// EventsOfType returns the recorded events matching t, in order.
func (o *RecordingObserver) EventsOfType(t provisioning.EventType) []provisioning.Event {
	var out []provisioning.Event
	for _, e := range o.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
