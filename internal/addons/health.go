package addons

import (
	"fmt"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
)

// Health is the normalized add-on state the machine transitions on.
type Health string

const (
	HealthNotInstalled Health = "NOT_INSTALLED"
	HealthActive       Health = "ACTIVE"
	HealthDegraded     Health = "DEGRADED"
)

// Classify normalizes an observed add-on into a machine state. Anything
// installed but not ACTIVE, including statuses outside the known enum,
// classifies as DEGRADED.
func Classify(observed *aws.Addon) Health {
	switch {
	case observed == nil:
		return HealthNotInstalled
	case observed.Status == "ACTIVE":
		return HealthActive
	default:
		return HealthDegraded
	}
}

// DegradedResourceWarning reports an add-on that ended its repair sequence
// still unhealthy. Non-fatal: the run continues and the final summary
// carries the warning.
type DegradedResourceWarning struct {
	Kind   string
	Key    string
	Reason string
}

func (w *DegradedResourceWarning) Error() string {
	return fmt.Sprintf("%s %q degraded: %s", w.Kind, w.Key, w.Reason)
}
