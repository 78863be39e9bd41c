package gitops

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/policy"
	"github.com/ekstrap/ekstrap/internal/provisioning"
)

// Provisioner rewrites the configured workflow files against the deploy
// role.
type Provisioner struct{}

// NewProvisioner creates a new gitops provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "gitops"
}

// Provision patches every configured workflow file with the deploy role ARN
// and region. Files already carrying the right values are left untouched. A
// missing or unpatchable file fails the phase: a half-wired repository must
// not look provisioned.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.DeployRole == nil {
		return errors.New("deploy-role phase has not run")
	}
	if err := ctx.Run.RequireRepository(); err != nil {
		return err
	}

	roleARN := ctx.State.DeployRole.ARN
	files := ctx.Config.GitHub.WorkflowFiles

	for i, file := range files {
		provisioning.LogResourceCreating(ctx.Observer, p.Name(), "workflow", file)

		outcome, err := p.patchFile(file, roleARN, ctx.Run.Region)
		if err != nil {
			return err
		}
		if outcome == aws.OutcomeRepaired {
			ctx.State.PatchedWorkflows = append(ctx.State.PatchedWorkflows, file)
		}
		ctx.Record(p.Name(), "workflow", file, outcome, "")
		ctx.Observer.Progress(p.Name(), i+1, len(files))
	}

	return nil
}

func (p *Provisioner) patchFile(file, roleARN, region string) (aws.Outcome, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading workflow %s: %w", file, err)
	}

	patched, err := policy.PatchWorkflow(file, content, roleARN, region)
	if err != nil {
		return "", err
	}
	if bytes.Equal(content, patched) {
		return aws.OutcomePresent, nil
	}

	info, err := os.Stat(file)
	if err != nil {
		return "", fmt.Errorf("inspecting workflow %s: %w", file, err)
	}
	if err := os.WriteFile(file, patched, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("writing workflow %s: %w", file, err)
	}
	return aws.OutcomeRepaired, nil
}
