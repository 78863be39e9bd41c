package network

import (
	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
	"github.com/ekstrap/ekstrap/internal/util/tags"
)

// Provisioner reconciles the VPC and its internet gateway.
type Provisioner struct{}

// NewProvisioner creates a new network provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "network"
}

// Provision reconciles the VPC and the internet gateway attached to it.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	cluster := ctx.Config.ClusterName

	name := naming.Network(cluster)
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "network", name)
	network, outcome, err := ctx.Infra.EnsureNetwork(ctx, aws.NetworkSpec{
		Name: name,
		CIDR: ctx.Config.Network.VPCCIDR,
		Tags: tags.ForResource(cluster, name),
	})
	if err != nil {
		return err
	}
	ctx.State.Network = network
	ctx.Record(p.Name(), "network", name, outcome, network.ID)

	igwName := naming.InternetGateway(cluster)
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "internet gateway", igwName)
	igw, outcome, err := ctx.Infra.EnsureInternetGateway(ctx, aws.InternetGatewaySpec{
		Name:      igwName,
		NetworkID: network.ID,
		Tags:      tags.ForResource(cluster, igwName),
	})
	if err != nil {
		return err
	}
	ctx.State.InternetGateway = igw
	ctx.Record(p.Name(), "internet gateway", igwName, outcome, igw.ID)

	return nil
}

// Teardown removes the internet gateway, then the VPC. The gateway is
// detached from the VPC before deletion; absence of either resource is
// success.
func (p *Provisioner) Teardown(ctx *provisioning.Context) error {
	cluster := ctx.Config.ClusterName

	igwName := naming.InternetGateway(cluster)
	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "internet gateway", igwName)
	outcome, err := ctx.Infra.DeleteInternetGateway(ctx, igwName)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "internet gateway", igwName, outcome, "")

	name := naming.Network(cluster)
	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "network", name)
	outcome, err = ctx.Infra.DeleteNetwork(ctx, name)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "network", name, outcome, "")

	return nil
}
