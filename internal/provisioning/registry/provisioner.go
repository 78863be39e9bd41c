package registry

import (
	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
	"github.com/ekstrap/ekstrap/internal/util/tags"
)

// Provisioner reconciles the image registry.
type Provisioner struct{}

// NewProvisioner creates a new registry provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "registry"
}

// Provision reconciles the registry with image scanning on push.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	cluster := ctx.Config.ClusterName
	name := naming.Registry(cluster)

	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "registry", name)
	registry, outcome, err := ctx.Infra.EnsureRegistry(ctx, aws.RegistrySpec{
		Name:       name,
		ScanOnPush: ctx.Config.Registry.ScanEnabled(),
		Tags:       tags.ForResource(cluster, name),
	})
	if err != nil {
		return err
	}
	ctx.State.Registry = registry
	ctx.Record(p.Name(), "registry", name, outcome, registry.URI)

	return nil
}

// Teardown removes the registry and the images it holds.
func (p *Provisioner) Teardown(ctx *provisioning.Context) error {
	cluster := ctx.Config.ClusterName
	name := naming.Registry(cluster)

	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "registry", name)
	outcome, err := ctx.Infra.DeleteRegistry(ctx, name)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "registry", name, outcome, "")

	return nil
}
