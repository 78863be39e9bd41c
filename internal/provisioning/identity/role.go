package identity

import (
	"errors"
	"fmt"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/policy"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
	"github.com/ekstrap/ekstrap/internal/util/tags"
)

// RoleProvisioner reconciles the deploy role GitHub Actions assumes.
type RoleProvisioner struct{}

// NewRoleProvisioner creates a new deploy role provisioner.
func NewRoleProvisioner() *RoleProvisioner {
	return &RoleProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *RoleProvisioner) Name() string {
	return "deploy-role"
}

// Provision reconciles the deploy role. Its trust policy federates through
// the identity provider and is scoped to one branch of one repository; its
// inline permissions cover registry push and cluster describe.
func (p *RoleProvisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.OIDCProvider == nil {
		return errors.New("identity-provider phase has not run")
	}
	if err := ctx.Run.RequireRepository(); err != nil {
		return err
	}

	cluster := ctx.Config.ClusterName
	roleName := naming.DeployRole(cluster)

	trust, err := policy.PatchTrust(policy.TrustTemplate(), ctx.State.OIDCProvider.ARN, []string{
		policy.RepoRef(ctx.Run.Organization, ctx.Run.Repository, ctx.Run.Branch),
	})
	if err != nil {
		return fmt.Errorf("building deploy role trust policy: %w", err)
	}

	permissions, err := policy.PatchPermissions(policy.PermissionsTemplate(), map[string]string{
		"account-id":   ctx.Run.AccountID,
		"region":       ctx.Run.Region,
		"cluster-name": naming.Cluster(cluster),
	})
	if err != nil {
		return fmt.Errorf("building deploy role permissions: %w", err)
	}

	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "role", roleName)
	role, outcome, err := ctx.Infra.EnsureRole(ctx, aws.RoleSpec{
		Name:        roleName,
		Description: fmt.Sprintf("GitHub Actions deploy role for the %s cluster", cluster),
		TrustPolicy: string(trust),
		InlinePolicies: map[string]string{
			naming.DeployPolicy(cluster): string(permissions),
		},
		Tags: tags.ForResource(cluster, roleName),
	})
	if err != nil {
		return err
	}
	ctx.State.DeployRole = role
	ctx.Record(p.Name(), "role", roleName, outcome, role.ARN)

	return nil
}

// Teardown strips the role's inline policies and attachments, then deletes
// the role itself.
func (p *RoleProvisioner) Teardown(ctx *provisioning.Context) error {
	roleName := naming.DeployRole(ctx.Config.ClusterName)

	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "role", roleName)
	if _, err := ctx.Infra.DeleteRolePolicies(ctx, roleName); err != nil {
		return err
	}
	outcome, err := ctx.Infra.DeleteRole(ctx, roleName)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "role", roleName, outcome, "")

	return nil
}
