package identity

import (
	"errors"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/policy"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
)

// BindingProvisioner grants the deploy role cluster admin through an access
// binding.
type BindingProvisioner struct{}

// NewBindingProvisioner creates a new access binding provisioner.
func NewBindingProvisioner() *BindingProvisioner {
	return &BindingProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *BindingProvisioner) Name() string {
	return "access-binding"
}

// Provision binds the deploy role to the cluster admin access policy.
func (p *BindingProvisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.DeployRole == nil {
		return errors.New("deploy-role phase has not run")
	}

	principal := ctx.State.DeployRole.ARN
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "access binding", principal)
	binding, outcome, err := ctx.Infra.EnsureAccessBinding(ctx, aws.AccessBindingSpec{
		ClusterName:  naming.Cluster(ctx.Config.ClusterName),
		PrincipalARN: principal,
		PolicyARN:    policy.ClusterAdminAccessPolicyARN,
	})
	if err != nil {
		return err
	}
	ctx.State.AccessBinding = binding
	ctx.Record(p.Name(), "access binding", principal, outcome, policy.ClusterAdminAccessPolicyARN)

	return nil
}

// Teardown removes the deploy role's access binding. The principal ARN is
// derived from the account and cluster name because teardown starts with no
// provisioned state.
func (p *BindingProvisioner) Teardown(ctx *provisioning.Context) error {
	principal := ctx.Run.RoleARN(naming.DeployRole(ctx.Config.ClusterName))

	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "access binding", principal)
	outcome, err := ctx.Infra.DeleteAccessBinding(ctx, naming.Cluster(ctx.Config.ClusterName), principal)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "access binding", principal, outcome, "")

	return nil
}
