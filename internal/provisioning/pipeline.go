package provisioning

import (
	"errors"
	"fmt"
	"time"
)

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// Reverser is a Phase that can tear its resources back down. Phases with
// nothing durable to remove do not implement it and are skipped during
// teardown.
type Reverser interface {
	Phase

	// Teardown removes the phase's resources. Absence of a resource is
	// success, so teardown of a half-provisioned stack converges too.
	Teardown(ctx *Context) error
}

// RunPhases executes all provisioning phases sequentially, stopping at the
// first failure.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting provisioning with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		ctx.Observer.Printf("[%s] starting", name)

		if err := phase.Provision(ctx); err != nil {
			ctx.Observer.Printf("[%s] failed: %v", name, err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Observer.Printf("[%s] completed in %v", name, time.Since(phaseStart).Round(time.Millisecond))
	}

	ctx.Observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

// RunTeardown walks phases in the given order and tears each one down.
// Unlike provisioning, a failure does not stop the walk: one stuck resource
// must not strand everything behind it, so every phase gets its turn and
// all failures come back joined into a single error.
func RunTeardown(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting teardown with %d phases...", len(phases))

	var errs []error
	for i, phase := range phases {
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		rev, ok := phase.(Reverser)
		if !ok {
			ctx.Observer.Event(Event{
				Type:    EventPhaseSkipped,
				Phase:   phase.Name(),
				Message: "nothing to tear down",
			})
			continue
		}

		phaseStart := time.Now()
		ctx.Observer.Printf("[%s] tearing down", name)

		if err := rev.Teardown(ctx); err != nil {
			ctx.Observer.Printf("[%s] failed: %v", name, err)
			errs = append(errs, fmt.Errorf("%s teardown failed: %w", phase.Name(), err))
			continue
		}

		ctx.Observer.Printf("[%s] completed in %v", name, time.Since(phaseStart).Round(time.Millisecond))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	ctx.Observer.Printf("Teardown completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
