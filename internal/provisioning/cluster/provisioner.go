package cluster

import (
	"errors"
	"fmt"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/policy"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
	"github.com/ekstrap/ekstrap/internal/util/tags"
)

// Provisioner reconciles the control plane and its service role.
type Provisioner struct{}

// NewProvisioner creates a new cluster provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "cluster"
}

// Provision reconciles the service role trusted by the EKS control plane,
// then the cluster itself across both subnets. Returns once the control
// plane is active.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.PublicSubnet == nil || ctx.State.PrivateSubnet == nil {
		return errors.New("subnets phase has not run")
	}
	if ctx.State.SecurityBoundary == nil {
		return errors.New("security-boundary phase has not run")
	}

	cluster := ctx.Config.ClusterName

	role, err := p.provisionServiceRole(ctx)
	if err != nil {
		return err
	}

	name := naming.Cluster(cluster)
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "cluster", name)
	observed, outcome, err := ctx.Infra.EnsureCluster(ctx, aws.ClusterSpec{
		Name:             name,
		Version:          ctx.Config.KubernetesVersion,
		RoleARN:          role.ARN,
		SubnetIDs:        []string{ctx.State.PublicSubnet.ID, ctx.State.PrivateSubnet.ID},
		SecurityGroupIDs: []string{ctx.State.SecurityBoundary.ID},
		Tags:             tags.ForResource(cluster, name),
	})
	if err != nil {
		return err
	}
	ctx.State.Cluster = observed
	ctx.Record(p.Name(), "cluster", name, outcome, observed.ARN)

	return nil
}

func (p *Provisioner) provisionServiceRole(ctx *provisioning.Context) (*aws.Role, error) {
	cluster := ctx.Config.ClusterName
	roleName := naming.ClusterServiceRole(cluster)

	trust, err := policy.ServiceTrust("eks.amazonaws.com")
	if err != nil {
		return nil, fmt.Errorf("building service role trust policy: %w", err)
	}

	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "role", roleName)
	role, outcome, err := ctx.Infra.EnsureRole(ctx, aws.RoleSpec{
		Name:               roleName,
		Description:        fmt.Sprintf("control plane role for the %s cluster", cluster),
		TrustPolicy:        trust,
		AttachedPolicyARNs: []string{policy.ClusterPolicyARN},
		Tags:               tags.ForResource(cluster, roleName),
	})
	if err != nil {
		return nil, err
	}
	ctx.State.ClusterRole = role
	ctx.Record(p.Name(), "role", roleName, outcome, role.ARN)

	return role, nil
}

// Teardown deletes the cluster, waiting for the control plane to be gone,
// then strips and deletes its service role. The role goes last because the
// control plane still assumes it while shutting down.
func (p *Provisioner) Teardown(ctx *provisioning.Context) error {
	cluster := ctx.Config.ClusterName

	name := naming.Cluster(cluster)
	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "cluster", name)
	outcome, err := ctx.Infra.DeleteCluster(ctx, name)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "cluster", name, outcome, "")

	roleName := naming.ClusterServiceRole(cluster)
	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "role", roleName)
	if _, err := ctx.Infra.DeleteRolePolicies(ctx, roleName); err != nil {
		return err
	}
	outcome, err = ctx.Infra.DeleteRole(ctx, roleName)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "role", roleName, outcome, "")

	return nil
}
