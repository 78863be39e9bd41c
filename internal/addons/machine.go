package addons

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/util/async"
)

// Action is the convergence branch the machine took for one add-on.
type Action string

const (
	ActionNone     Action = "none"
	ActionInstall  Action = "install"
	ActionUpdate   Action = "update"
	ActionRecreate Action = "recreate"
)

// Result records one add-on's reconciliation outcome.
type Result struct {
	Name   string
	Action Action
	Health Health

	// Warning is set when Health is not ACTIVE at the end of the
	// sequence.
	Warning *DegradedResourceWarning
}

// Manager evaluates the add-on state machine against a cluster.
type Manager struct {
	client aws.AddonManager

	// Concurrency bounds how many add-ons reconcile at once; zero means
	// unbounded.
	Concurrency int
}

// NewManager returns a Manager reconciling add-ons through client.
func NewManager(client aws.AddonManager) *Manager {
	return &Manager{client: client}
}

// Reconcile converges one add-on and reports the branch taken. The returned
// error is a probe failure, which is fatal to the run; convergence failures
// surface as a degraded result instead.
func (m *Manager) Reconcile(ctx context.Context, spec aws.AddonSpec) (Result, error) {
	observed, err := m.client.GetAddon(ctx, spec.ClusterName, spec.Name)
	if err != nil {
		return Result{Name: spec.Name}, &aws.ProbeError{Kind: "add-on", Key: spec.Name, Err: err}
	}

	switch Classify(observed) {
	case HealthActive:
		return Result{Name: spec.Name, Action: ActionNone, Health: HealthActive}, nil
	case HealthNotInstalled:
		return m.install(ctx, spec), nil
	default:
		return m.repair(ctx, spec), nil
	}
}

// ReconcileAll converges every add-on, independent ones concurrently when
// Concurrency allows. Results come back in spec order. The returned error is
// a probe failure from any add-on; degraded outcomes live in the results.
func (m *Manager) ReconcileAll(ctx context.Context, specs []aws.AddonSpec) ([]Result, error) {
	results := make([]Result, len(specs))
	tasks := make([]async.Task, len(specs))
	for i, spec := range specs {
		tasks[i] = async.Task{
			Name: spec.Name,
			Func: func(ctx context.Context) error {
				res, err := m.Reconcile(ctx, spec)
				results[i] = res
				return err
			},
		}
	}
	if err := async.RunParallel(ctx, m.Concurrency, tasks); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *Manager) install(ctx context.Context, spec aws.AddonSpec) Result {
	res := Result{Name: spec.Name, Action: ActionInstall}
	if err := m.client.CreateAddon(ctx, spec); err != nil {
		return degraded(res, fmt.Errorf("install: %w", err))
	}
	return m.settle(ctx, spec, res)
}

func (m *Manager) repair(ctx context.Context, spec aws.AddonSpec) Result {
	res := Result{Name: spec.Name, Action: ActionUpdate}
	if err := m.client.UpdateAddon(ctx, spec); err != nil {
		// Compensating action, at most once per run. A recreate that
		// fails leaves the add-on degraded until the next invocation.
		res.Action = ActionRecreate
		if err := m.recreate(ctx, spec); err != nil {
			return degraded(res, err)
		}
	}
	return m.settle(ctx, spec, res)
}

func (m *Manager) recreate(ctx context.Context, spec aws.AddonSpec) error {
	if err := m.client.DeleteAddon(ctx, spec.ClusterName, spec.Name); err != nil {
		return fmt.Errorf("recreate delete: %w", err)
	}
	if err := m.client.WaitAddonDeleted(ctx, spec.ClusterName, spec.Name); err != nil {
		return fmt.Errorf("recreate waiting for deletion: %w", err)
	}
	if err := m.client.CreateAddon(ctx, spec); err != nil {
		return fmt.Errorf("recreate install: %w", err)
	}
	return nil
}

// settle blocks until the add-on reports ACTIVE and fills in terminal
// health.
func (m *Manager) settle(ctx context.Context, spec aws.AddonSpec, res Result) Result {
	observed, err := m.client.WaitAddonActive(ctx, spec.ClusterName, spec.Name)
	if err != nil {
		return degraded(res, fmt.Errorf("waiting for active: %w", err))
	}
	if observed == nil {
		return degraded(res, errors.New("vanished while settling"))
	}
	if Classify(observed) != HealthActive {
		return degraded(res, fmt.Errorf("settled in status %s", observed.Status))
	}
	res.Health = HealthActive
	return res
}

func degraded(res Result, reason error) Result {
	res.Health = HealthDegraded
	res.Warning = &DegradedResourceWarning{Kind: "add-on", Key: res.Name, Reason: reason.Error()}
	return res
}
