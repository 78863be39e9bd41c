// Package orchestration coordinates the provisioning and teardown workflows.
//
// It owns the fixed stage order and delegates the actual work to the
// provisioners in the internal/provisioning subpackages. Data flows one way
// through the sequence: each phase's recorded state feeds the phases after
// it, so provisioning runs the list forward and teardown walks it in
// reverse.
//
// # Usage
//
// The Reconciler is the main entry point:
//
//	r := orchestration.NewReconciler(infra, cfg, run)
//	summary, err := r.Provision(ctx)
//
// Both workflows are idempotent: re-running provisioning finds converged
// resources present and changes nothing, re-running teardown finds them
// absent and succeeds.
package orchestration
