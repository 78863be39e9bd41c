package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	testutil "github.com/ekstrap/ekstrap/internal/testing"
)

func TestProvisionerName(t *testing.T) {
	p := NewProvisioner()
	assert.Equal(t, "registry", p.Name())
}

func TestProvision(t *testing.T) {
	var captured aws.RegistrySpec
	mockClient := &aws.MockClient{
		EnsureRegistryFunc: func(_ context.Context, spec aws.RegistrySpec) (*aws.Registry, aws.Outcome, error) {
			captured = spec
			return &aws.Registry{Name: spec.Name, URI: "111122223333.dkr.ecr.il-central-1.amazonaws.com/" + spec.Name}, aws.OutcomePresent, nil
		},
	}

	cfg := testutil.NewConfigBuilder().Build()
	ctx, _ := testutil.NewProvisioningContext(t, cfg, mockClient)

	require.NoError(t, NewProvisioner().Provision(ctx))

	// The registry is named after the cluster with no suffix and scans
	// pushed images by default.
	assert.Equal(t, "acme-web", captured.Name)
	assert.True(t, captured.ScanOnPush)

	require.NotNil(t, ctx.State.Registry)
	require.Len(t, ctx.State.Summary.Resources, 1)
	assert.Equal(t, "present", ctx.State.Summary.Resources[0].Outcome)
}

func TestProvisionHonorsScanOptOut(t *testing.T) {
	var captured aws.RegistrySpec
	mockClient := &aws.MockClient{
		EnsureRegistryFunc: func(_ context.Context, spec aws.RegistrySpec) (*aws.Registry, aws.Outcome, error) {
			captured = spec
			return &aws.Registry{Name: spec.Name}, aws.OutcomeCreated, nil
		},
	}

	cfg := testutil.NewConfigBuilder().Build()
	off := false
	cfg.Registry.ScanOnPush = &off

	ctx, _ := testutil.NewProvisioningContext(t, cfg, mockClient)

	require.NoError(t, NewProvisioner().Provision(ctx))
	assert.False(t, captured.ScanOnPush)
}

func TestProvisionPropagatesError(t *testing.T) {
	mockClient := &aws.MockClient{
		EnsureRegistryFunc: func(_ context.Context, _ aws.RegistrySpec) (*aws.Registry, aws.Outcome, error) {
			return nil, "", assert.AnError
		},
	}

	cfg := testutil.NewConfigBuilder().Build()
	ctx, _ := testutil.NewProvisioningContext(t, cfg, mockClient)

	require.Error(t, NewProvisioner().Provision(ctx))
	assert.Nil(t, ctx.State.Registry)
}

func TestTeardown(t *testing.T) {
	fixture := testutil.NewInfraFixture()
	mockClient := fixture.Stateful()
	cfg := testutil.NewConfigBuilder().Build()

	ctx, _ := testutil.NewProvisioningContext(t, cfg, mockClient)
	require.NoError(t, NewProvisioner().Provision(ctx))
	require.NoError(t, NewProvisioner().Teardown(ctx))

	assert.Empty(t, fixture.Remaining())

	// A second teardown finds nothing and still succeeds.
	again, _ := testutil.NewProvisioningContext(t, cfg, mockClient)
	require.NoError(t, NewProvisioner().Teardown(again))
	require.Len(t, again.State.Summary.Resources, 1)
	assert.Equal(t, "absent", again.State.Summary.Resources[0].Outcome)
}
