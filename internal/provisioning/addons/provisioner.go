package addons

import (
	"errors"
	"fmt"

	machine "github.com/ekstrap/ekstrap/internal/addons"
	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
)

// Provisioner reconciles the configured add-ons against the cluster.
type Provisioner struct{}

// NewProvisioner creates a new add-on provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "add-ons"
}

// Provision runs the add-on state machine over every configured add-on.
// Probe failures abort the run; convergence failures degrade the add-on,
// which surfaces as a warning and never fails the phase.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.Cluster == nil {
		return errors.New("cluster phase has not run")
	}

	names := ctx.Config.Addons.Names
	specs := make([]aws.AddonSpec, len(names))
	for i, name := range names {
		provisioning.LogResourceCreating(ctx.Observer, p.Name(), "add-on", name)
		specs[i] = aws.AddonSpec{ClusterName: ctx.State.Cluster.Name, Name: name}
	}

	mgr := machine.NewManager(ctx.Infra)
	mgr.Concurrency = ctx.Config.Addons.Concurrency

	results, err := mgr.ReconcileAll(ctx, specs)
	if err != nil {
		return err
	}
	ctx.State.Addons = results

	for i, res := range results {
		if res.Health == machine.HealthDegraded {
			ctx.Warn(p.Name(), "add-on", res.Name, res.Warning)
			ctx.State.Summary.Record("add-on", res.Name, "degraded", res.Warning.Reason)
		} else {
			ctx.Record(p.Name(), "add-on", res.Name, outcomeForAction(res.Action), actionDetail(res.Action))
		}
		ctx.Observer.Progress(p.Name(), i+1, len(results))
	}

	return nil
}

// outcomeForAction maps the machine's convergence branch onto the shared
// outcome vocabulary.
func outcomeForAction(action machine.Action) aws.Outcome {
	switch action {
	case machine.ActionInstall:
		return aws.OutcomeCreated
	case machine.ActionUpdate, machine.ActionRecreate:
		return aws.OutcomeRepaired
	default:
		return aws.OutcomePresent
	}
}

func actionDetail(action machine.Action) string {
	if action == machine.ActionNone {
		return ""
	}
	return string(action)
}

// Teardown removes every configured add-on from the cluster, waiting for
// each deletion to finish so the cluster can be deleted afterwards.
func (p *Provisioner) Teardown(ctx *provisioning.Context) error {
	cluster := naming.Cluster(ctx.Config.ClusterName)

	for _, name := range ctx.Config.Addons.Names {
		provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "add-on", name)
		observed, err := ctx.Infra.GetAddon(ctx, cluster, name)
		if err != nil {
			return &aws.ProbeError{Kind: "add-on", Key: name, Err: err}
		}
		if observed == nil {
			ctx.Record(p.Name(), "add-on", name, aws.OutcomeAbsent, "")
			continue
		}
		if err := ctx.Infra.DeleteAddon(ctx, cluster, name); err != nil {
			return err
		}
		if err := ctx.Infra.WaitAddonDeleted(ctx, cluster, name); err != nil {
			return fmt.Errorf("waiting for %s deletion: %w", name, err)
		}
		ctx.Record(p.Name(), "add-on", name, aws.OutcomeDeleted, "")
	}

	return nil
}
