// Package addons reconciles the managed add-ons once the cluster is up.
//
// The health state machine in internal/addons owns the per-add-on decision
// logic; this phase feeds it the configured add-on list, bounds its
// concurrency, and folds degraded outcomes into run warnings instead of
// failing the run.
package addons
