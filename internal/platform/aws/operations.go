package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekstrap/ekstrap/internal/util/retry"
)

// Outcome is the branch a reconcile took for one resource.
type Outcome string

const (
	// OutcomeCreated means the resource was absent and has been created.
	OutcomeCreated Outcome = "created"

	// OutcomePresent means the resource already existed and was left as is.
	OutcomePresent Outcome = "present"

	// OutcomeRepaired means the resource existed unhealthy and was converged.
	OutcomeRepaired Outcome = "repaired"

	// OutcomeDeleted means the resource existed and has been deleted.
	OutcomeDeleted Outcome = "deleted"

	// OutcomeAbsent means a delete found nothing to do.
	OutcomeAbsent Outcome = "absent"
)

// EnsureOperation encapsulates probe-then-converge logic for any resource
// kind. The flow is fixed: probe by the identifying key; if present, return
// the observed descriptor unchanged (unless the kind defines a health
// policy via NeedsRepair/Repair); if absent, create and re-probe to confirm
// the new resource is discoverable by its key. Two consecutive executions
// with no external drift perform zero mutating calls on the second.
//
// Usage:
//
//	func (c *RealClient) EnsureRegistry(ctx context.Context, spec RegistrySpec) (*Registry, Outcome, error) {
//	    return (&EnsureOperation[Registry]{
//	        Key:          spec.Name,
//	        ResourceType: "registry",
//	        Probe:        func(ctx context.Context) (*Registry, error) { return c.getRegistry(ctx, spec.Name) },
//	        Create:       func(ctx context.Context) (*Registry, error) { return c.createRegistry(ctx, spec) },
//	    }).Execute(ctx)
//	}
type EnsureOperation[T any] struct {
	Key          string
	ResourceType string

	// Probe looks the resource up by its identifying key. Absence is
	// (nil, nil); only malformed or unreachable provider responses return
	// an error.
	Probe func(ctx context.Context) (*T, error)

	// Create provisions the resource carrying the identifying key and
	// blocks until the provider reports it usable.
	Create func(ctx context.Context) (*T, error)

	// NeedsRepair reports whether an existing resource is unhealthy
	// (optional; kinds without a health policy leave it nil).
	NeedsRepair func(existing *T) bool

	// Repair converges an unhealthy existing resource (optional, paired
	// with NeedsRepair).
	Repair func(ctx context.Context, existing *T) (*T, error)
}

// Execute performs the ensure operation and reports which branch ran.
func (op *EnsureOperation[T]) Execute(ctx context.Context) (*T, Outcome, error) {
	existing, err := op.Probe(ctx)
	if err != nil {
		return nil, "", &ProbeError{Kind: op.ResourceType, Key: op.Key, Err: err}
	}

	if existing != nil {
		if op.NeedsRepair != nil && op.Repair != nil && op.NeedsRepair(existing) {
			repaired, err := op.Repair(ctx, existing)
			if err != nil {
				return nil, "", &ConvergenceError{Kind: op.ResourceType, Key: op.Key, Action: "repair", Err: err}
			}
			return repaired, OutcomeRepaired, nil
		}
		return existing, OutcomePresent, nil
	}

	if _, err := op.Create(ctx); err != nil {
		return nil, "", &ConvergenceError{Kind: op.ResourceType, Key: op.Key, Action: "create", Err: err}
	}

	// Confirm the created resource is discoverable by its key; re-runs
	// depend on that.
	created, err := op.Probe(ctx)
	if err != nil {
		return nil, "", &ProbeError{Kind: op.ResourceType, Key: op.Key, Err: err}
	}
	if created == nil {
		return nil, "", &ConvergenceError{
			Kind: op.ResourceType, Key: op.Key, Action: "create",
			Err: errors.New("created resource not discoverable by its identifying key"),
		}
	}
	return created, OutcomeCreated, nil
}

// DeleteOperation encapsulates deletion logic for any resource kind.
// Absence of the target is success, not error. Throttled or
// dependency-blocked deletes are retried with exponential backoff; other
// failures stop immediately.
type DeleteOperation[T any] struct {
	Key          string
	ResourceType string

	// Probe looks the resource up by its identifying key, (nil, nil) on
	// absence.
	Probe func(ctx context.Context) (*T, error)

	// Delete removes the resource.
	Delete func(ctx context.Context, existing *T) error

	// Wait blocks until the provider finishes deleting (optional; kinds
	// whose delete settles asynchronously set it so successor stages can
	// rely on the resource being gone).
	Wait func(ctx context.Context, existing *T) error
}

// Execute performs the delete operation and reports which branch ran.
func (op *DeleteOperation[T]) Execute(ctx context.Context) (Outcome, error) {
	existing, err := op.Probe(ctx)
	if err != nil {
		return "", &ProbeError{Kind: op.ResourceType, Key: op.Key, Err: err}
	}
	if existing == nil {
		return OutcomeAbsent, nil
	}

	err = retry.WithExponentialBackoff(ctx, func() error {
		if err := op.Delete(ctx, existing); err != nil {
			if IsNotFound(err) {
				return nil
			}
			if IsRetryable(err) {
				return err
			}
			return retry.Fatal(err)
		}
		return nil
	})
	if err != nil {
		return "", &ConvergenceError{Kind: op.ResourceType, Key: op.Key, Action: "delete", Err: err}
	}

	if op.Wait != nil {
		if err := op.Wait(ctx, existing); err != nil {
			return "", &ConvergenceError{Kind: op.ResourceType, Key: op.Key, Action: "delete", Err: fmt.Errorf("waiting for deletion: %w", err)}
		}
	}
	return OutcomeDeleted, nil
}
