package gitops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstrap/ekstrap/internal/config"
	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/policy"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	testutil "github.com/ekstrap/ekstrap/internal/testing"
)

const workflowTemplate = `name: deploy
on:
  push:
    branches: [main]
jobs:
  deploy:
    runs-on: ubuntu-latest
    steps:
      - uses: aws-actions/configure-aws-credentials@v4
        with:
          role-to-assume: arn:aws:iam::000000000000:role/placeholder
          aws-region: us-east-1
`

func writeWorkflows(t *testing.T, count int) (*config.Config, []string) {
	t.Helper()
	dir := t.TempDir()
	files := make([]string, count)
	for i := range files {
		files[i] = filepath.Join(dir, "workflow-"+string(rune('a'+i))+".yml")
		require.NoError(t, os.WriteFile(files[i], []byte(workflowTemplate), 0o644))
	}
	cfg := testutil.NewConfigBuilder().WithWorkflowFiles(files...).Build()
	return cfg, files
}

func seedDeployRole(ctx *provisioning.Context) {
	ctx.State.DeployRole = &aws.Role{
		Name: "acme-web-deploy",
		ARN:  "arn:aws:iam::111122223333:role/acme-web-deploy",
	}
}

func TestProvisionerName(t *testing.T) {
	p := NewProvisioner()
	assert.Equal(t, "gitops", p.Name())
}

func TestProvisionerHasNoTeardown(t *testing.T) {
	var phase provisioning.Phase = NewProvisioner()
	_, ok := phase.(provisioning.Reverser)
	assert.False(t, ok, "workflow edits belong to git history, not teardown")
}

func TestProvisionRequiresDeployRole(t *testing.T) {
	cfg, _ := writeWorkflows(t, 1)
	ctx, _ := testutil.NewProvisioningContext(t, cfg, &aws.MockClient{})

	err := NewProvisioner().Provision(ctx)
	require.ErrorContains(t, err, "deploy-role phase has not run")
}

func TestProvisionPatchesWorkflows(t *testing.T) {
	cfg, files := writeWorkflows(t, 2)
	ctx, _ := testutil.NewProvisioningContext(t, cfg, &aws.MockClient{})
	seedDeployRole(ctx)

	require.NoError(t, NewProvisioner().Provision(ctx))

	for _, file := range files {
		patched, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Contains(t, string(patched), "role-to-assume: arn:aws:iam::111122223333:role/acme-web-deploy")
		assert.Contains(t, string(patched), "aws-region: il-central-1")
		assert.NotContains(t, string(patched), "000000000000")
	}

	assert.Equal(t, files, ctx.State.PatchedWorkflows)
	require.Len(t, ctx.State.Summary.Resources, 2)
	for _, res := range ctx.State.Summary.Resources {
		assert.Equal(t, "repaired", res.Outcome, res.Key)
	}
}

func TestProvisionIsIdempotent(t *testing.T) {
	cfg, _ := writeWorkflows(t, 2)

	ctx, _ := testutil.NewProvisioningContext(t, cfg, &aws.MockClient{})
	seedDeployRole(ctx)
	require.NoError(t, NewProvisioner().Provision(ctx))

	again, _ := testutil.NewProvisioningContext(t, cfg, &aws.MockClient{})
	seedDeployRole(again)
	require.NoError(t, NewProvisioner().Provision(again))

	assert.Empty(t, again.State.PatchedWorkflows)
	for _, res := range again.State.Summary.Resources {
		assert.Equal(t, "present", res.Outcome, res.Key)
	}
}

func TestProvisionMissingWorkflowIsFatal(t *testing.T) {
	cfg := testutil.NewConfigBuilder().
		WithWorkflowFiles(filepath.Join(t.TempDir(), "missing.yml")).
		Build()
	ctx, _ := testutil.NewProvisioningContext(t, cfg, &aws.MockClient{})
	seedDeployRole(ctx)

	err := NewProvisioner().Provision(ctx)
	require.ErrorContains(t, err, "reading workflow")
}

func TestProvisionUnpatchableWorkflowIsFatal(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "no-credentials.yml")
	require.NoError(t, os.WriteFile(file, []byte("name: deploy\njobs: {}\n"), 0o644))

	cfg := testutil.NewConfigBuilder().WithWorkflowFiles(file).Build()
	ctx, _ := testutil.NewProvisioningContext(t, cfg, &aws.MockClient{})
	seedDeployRole(ctx)

	err := NewProvisioner().Provision(ctx)
	var substErr *policy.IncompleteSubstitutionError
	require.ErrorAs(t, err, &substErr)
}
