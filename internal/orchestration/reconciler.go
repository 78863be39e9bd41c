package orchestration

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ekstrap/ekstrap/internal/config"
	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/provisioning/access"
	"github.com/ekstrap/ekstrap/internal/provisioning/addons"
	"github.com/ekstrap/ekstrap/internal/provisioning/cluster"
	"github.com/ekstrap/ekstrap/internal/provisioning/compute"
	"github.com/ekstrap/ekstrap/internal/provisioning/gitops"
	"github.com/ekstrap/ekstrap/internal/provisioning/identity"
	"github.com/ekstrap/ekstrap/internal/provisioning/network"
	"github.com/ekstrap/ekstrap/internal/provisioning/registry"
	"github.com/ekstrap/ekstrap/internal/provisioning/report"
)

// ProvisionPhases returns every provisioning phase in dependency order. The
// order is fixed: each phase's output state is an input for the ones after
// it. The report phase is always last so the archived summary covers the
// whole run.
func ProvisionPhases() []provisioning.Phase {
	return []provisioning.Phase{
		network.NewProvisioner(),
		network.NewSubnetProvisioner(),
		network.NewSecurityProvisioner(),
		registry.NewProvisioner(),
		cluster.NewProvisioner(),
		compute.NewProvisioner(),
		addons.NewProvisioner(),
		access.NewProvisioner(),
		identity.NewProviderProvisioner(),
		identity.NewRoleProvisioner(),
		identity.NewBindingProvisioner(),
		gitops.NewProvisioner(),
		report.NewProvisioner(),
	}
}

// Reconciler drives the full provisioning and teardown workflows against
// one cluster.
type Reconciler struct {
	infra  aws.InfrastructureManager
	config *config.Config
	run    *provisioning.RunContext

	// Observer overrides the default console observer when set.
	Observer provisioning.Observer

	// phases in provisioning order; teardown derives its walk from them.
	phases []provisioning.Phase
}

// NewReconciler creates a reconciler for the configured cluster in the
// resolved account.
func NewReconciler(infra aws.InfrastructureManager, cfg *config.Config, run *provisioning.RunContext) *Reconciler {
	return &Reconciler{
		infra:  infra,
		config: cfg,
		run:    run,
		phases: ProvisionPhases(),
	}
}

// Provision converges the whole stack, stopping at the first fatal failure.
// The returned summary covers everything reconciled up to that point, so a
// failed run still reports what it did.
func (r *Reconciler) Provision(ctx context.Context) (*provisioning.Summary, error) {
	pCtx := r.newContext(ctx)
	summary := pCtx.State.Summary
	summary.Begin("provision", r.config.ClusterName, r.config.Region, r.run.AccountID)

	err := provisioning.RunPhases(pCtx, r.phases)
	summary.Finish()
	return summary, err
}

// Teardown removes the stack in reverse provisioning order. One stuck
// resource does not strand the rest: every phase gets its turn and all
// failures come back joined. The report phase runs at the very end either
// way, so the account keeps a record of what teardown removed and what it
// could not.
func (r *Reconciler) Teardown(ctx context.Context) (*provisioning.Summary, error) {
	pCtx := r.newContext(ctx)
	summary := pCtx.State.Summary
	summary.Begin("teardown", r.config.ClusterName, r.config.Region, r.run.AccountID)

	walk := slices.Clone(r.phases[:len(r.phases)-1])
	slices.Reverse(walk)

	err := provisioning.RunTeardown(pCtx, walk)
	if repErr := r.phases[len(r.phases)-1].Provision(pCtx); repErr != nil {
		err = errors.Join(err, fmt.Errorf("report phase failed: %w", repErr))
	}
	summary.Finish()
	return summary, err
}

func (r *Reconciler) newContext(ctx context.Context) *provisioning.Context {
	pCtx := provisioning.NewContext(ctx, r.config, r.run, r.infra)
	if r.Observer != nil {
		pCtx.Observer = r.Observer
	}
	return pCtx
}
