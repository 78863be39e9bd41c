package network

import (
	"errors"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
	"github.com/ekstrap/ekstrap/internal/util/tags"
)

// SubnetProvisioner reconciles the public and private subnets plus the
// public route table. The route table lives here rather than with the
// gateway because its subnet association needs the public subnet to exist
// first.
type SubnetProvisioner struct{}

// NewSubnetProvisioner creates a new subnet provisioner.
func NewSubnetProvisioner() *SubnetProvisioner {
	return &SubnetProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *SubnetProvisioner) Name() string {
	return "subnets"
}

// Provision reconciles one public subnet with automatic public IP
// assignment, one private subnet in a different availability zone, and the
// route table sending the public subnet's traffic through the internet
// gateway.
func (p *SubnetProvisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.Network == nil || ctx.State.InternetGateway == nil {
		return errors.New("network phase has not run")
	}

	cluster := ctx.Config.ClusterName
	zones := ctx.Config.Network.AvailabilityZones

	publicName := naming.PublicSubnet(cluster)
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "subnet", publicName)
	public, outcome, err := ctx.Infra.EnsureSubnet(ctx, aws.SubnetSpec{
		Name:             publicName,
		NetworkID:        ctx.State.Network.ID,
		CIDR:             ctx.Config.Network.PublicSubnetCIDR,
		AvailabilityZone: zones[0],
		Public:           true,
		Tags:             tags.ForResource(cluster, publicName),
	})
	if err != nil {
		return err
	}
	ctx.State.PublicSubnet = public
	ctx.Record(p.Name(), "subnet", publicName, outcome, public.ID)

	privateName := naming.PrivateSubnet(cluster)
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "subnet", privateName)
	private, outcome, err := ctx.Infra.EnsureSubnet(ctx, aws.SubnetSpec{
		Name:             privateName,
		NetworkID:        ctx.State.Network.ID,
		CIDR:             ctx.Config.Network.PrivateSubnetCIDR,
		AvailabilityZone: zones[1],
		Public:           false,
		Tags:             tags.ForResource(cluster, privateName),
	})
	if err != nil {
		return err
	}
	ctx.State.PrivateSubnet = private
	ctx.Record(p.Name(), "subnet", privateName, outcome, private.ID)

	rtName := naming.PublicRouteTable(cluster)
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "route table", rtName)
	rt, outcome, err := ctx.Infra.EnsureRouteTable(ctx, aws.RouteTableSpec{
		Name:      rtName,
		NetworkID: ctx.State.Network.ID,
		GatewayID: ctx.State.InternetGateway.ID,
		SubnetID:  public.ID,
		Tags:      tags.ForResource(cluster, rtName),
	})
	if err != nil {
		return err
	}
	ctx.State.RouteTable = rt
	ctx.Record(p.Name(), "route table", rtName, outcome, rt.ID)

	return nil
}

// Teardown removes the route table and then both subnets. The route table
// goes first so its subnet association is released before the subnets
// themselves.
func (p *SubnetProvisioner) Teardown(ctx *provisioning.Context) error {
	cluster := ctx.Config.ClusterName

	rtName := naming.PublicRouteTable(cluster)
	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "route table", rtName)
	outcome, err := ctx.Infra.DeleteRouteTable(ctx, rtName)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "route table", rtName, outcome, "")

	for _, name := range []string{naming.PublicSubnet(cluster), naming.PrivateSubnet(cluster)} {
		provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "subnet", name)
		outcome, err := ctx.Infra.DeleteSubnet(ctx, name)
		if err != nil {
			return err
		}
		ctx.Record(p.Name(), "subnet", name, outcome, "")
	}

	return nil
}
