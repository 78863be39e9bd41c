package network

import (
	"errors"
	"fmt"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
	"github.com/ekstrap/ekstrap/internal/util/tags"
)

// SecurityProvisioner reconciles the security group guarding the stack.
type SecurityProvisioner struct{}

// NewSecurityProvisioner creates a new security boundary provisioner.
func NewSecurityProvisioner() *SecurityProvisioner {
	return &SecurityProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *SecurityProvisioner) Name() string {
	return "security-boundary"
}

// Provision reconciles the security group with the configured ingress rules
// and unrestricted egress.
func (p *SecurityProvisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.Network == nil {
		return errors.New("network phase has not run")
	}

	cluster := ctx.Config.ClusterName
	name := naming.SecurityBoundary(cluster)

	ingress := make([]aws.PortRule, 0, len(ctx.Config.Security.IngressRules))
	for _, rule := range ctx.Config.Security.IngressRules {
		ingress = append(ingress, aws.PortRule{
			Protocol: rule.Protocol,
			Port:     int32(rule.Port), // #nosec G115 -- validated to 1..65535
			CIDR:     rule.CIDR,
		})
	}

	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "security boundary", name)
	sg, outcome, err := ctx.Infra.EnsureSecurityBoundary(ctx, aws.SecurityBoundarySpec{
		Name:        name,
		NetworkID:   ctx.State.Network.ID,
		Description: fmt.Sprintf("boundary for the %s cluster", cluster),
		Ingress:     ingress,
		Tags:        tags.ForResource(cluster, name),
	})
	if err != nil {
		return err
	}
	ctx.State.SecurityBoundary = sg
	ctx.Record(p.Name(), "security boundary", name, outcome, sg.ID)

	return nil
}

// Teardown removes the security group.
func (p *SecurityProvisioner) Teardown(ctx *provisioning.Context) error {
	cluster := ctx.Config.ClusterName

	name := naming.SecurityBoundary(cluster)
	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "security boundary", name)
	outcome, err := ctx.Infra.DeleteSecurityBoundary(ctx, name)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "security boundary", name, outcome, "")

	return nil
}
