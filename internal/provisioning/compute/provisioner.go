package compute

import (
	"errors"
	"fmt"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/policy"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
	"github.com/ekstrap/ekstrap/internal/util/tags"
)

// Provisioner reconciles the managed node group and its node role.
type Provisioner struct{}

// NewProvisioner creates a new compute provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "compute"
}

// Provision reconciles the node role, then the node group in the public
// subnet. Returns once all nodes have joined and the group is active.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.Cluster == nil {
		return errors.New("cluster phase has not run")
	}
	if ctx.State.PublicSubnet == nil {
		return errors.New("subnets phase has not run")
	}

	cluster := ctx.Config.ClusterName

	role, err := p.provisionNodeRole(ctx)
	if err != nil {
		return err
	}

	name := naming.NodeGroup(cluster)
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "node group", name)
	group, outcome, err := ctx.Infra.EnsureNodeGroup(ctx, aws.NodeGroupSpec{
		Name:         name,
		ClusterName:  ctx.State.Cluster.Name,
		RoleARN:      role.ARN,
		SubnetIDs:    []string{ctx.State.PublicSubnet.ID},
		InstanceType: ctx.Config.Compute.InstanceType,
		DesiredSize:  int32(ctx.Config.Compute.DesiredSize), // #nosec G115 -- validated to 1..1000
		MinSize:      int32(ctx.Config.Compute.MinSize),     // #nosec G115 -- validated to 1..1000
		MaxSize:      int32(ctx.Config.Compute.MaxSize),     // #nosec G115 -- validated to 1..1000
		Tags:         tags.ForResource(cluster, name),
	})
	if err != nil {
		return err
	}
	ctx.State.NodeGroup = group
	ctx.Record(p.Name(), "node group", name, outcome, group.Status)

	return nil
}

func (p *Provisioner) provisionNodeRole(ctx *provisioning.Context) (*aws.Role, error) {
	cluster := ctx.Config.ClusterName
	roleName := naming.NodeRole(cluster)

	trust, err := policy.ServiceTrust("ec2.amazonaws.com")
	if err != nil {
		return nil, fmt.Errorf("building node role trust policy: %w", err)
	}

	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "role", roleName)
	role, outcome, err := ctx.Infra.EnsureRole(ctx, aws.RoleSpec{
		Name:        roleName,
		Description: fmt.Sprintf("worker node role for the %s cluster", cluster),
		TrustPolicy: trust,
		AttachedPolicyARNs: []string{
			policy.WorkerNodePolicyARN,
			policy.CNIPolicyARN,
			policy.RegistryPullARN,
		},
		Tags: tags.ForResource(cluster, roleName),
	})
	if err != nil {
		return nil, err
	}
	ctx.State.NodeRole = role
	ctx.Record(p.Name(), "role", roleName, outcome, role.ARN)

	return role, nil
}

// Teardown deletes the node group, waiting for the nodes to drain, then
// strips and deletes the node role.
func (p *Provisioner) Teardown(ctx *provisioning.Context) error {
	cluster := ctx.Config.ClusterName

	name := naming.NodeGroup(cluster)
	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "node group", name)
	outcome, err := ctx.Infra.DeleteNodeGroup(ctx, naming.Cluster(cluster), name)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "node group", name, outcome, "")

	roleName := naming.NodeRole(cluster)
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
