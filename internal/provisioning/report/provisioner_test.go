package report

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	testutil "github.com/ekstrap/ekstrap/internal/testing"
)

// pinnedProvisioner stamps every report key with a fixed instant.
func pinnedProvisioner() *Provisioner {
	p := NewProvisioner()
	p.now = func() time.Time {
		return time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	}
	return p
}

func TestProvisionerName(t *testing.T) {
	p := NewProvisioner()
	assert.Equal(t, "report", p.Name())
}

func TestProvisionerHasNoTeardown(t *testing.T) {
	var phase provisioning.Phase = NewProvisioner()
	_, ok := phase.(provisioning.Reverser)
	assert.False(t, ok, "the report bucket and its history survive teardown")
}

func TestProvisionSkipsWhenDisabled(t *testing.T) {
	mockClient := &aws.MockClient{
		EnsureReportBucketFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			t.Errorf("unexpected bucket ensure for %s", name)
			return "", nil
		},
	}

	cfg := testutil.NewConfigBuilder().Build()
	ctx, recorder := testutil.NewProvisioningContext(t, cfg, mockClient)

	require.NoError(t, NewProvisioner().Provision(ctx))
	assert.Len(t, recorder.EventsOfType(provisioning.EventPhaseSkipped), 1)
	assert.Empty(t, ctx.State.Summary.Resources)
}

func TestProvisionUploadsSummary(t *testing.T) {
	fixture := testutil.NewInfraFixture()
	mockClient := fixture.Stateful()

	cfg := testutil.NewConfigBuilder().WithReport("").Build()
	ctx, _ := testutil.NewProvisioningContext(t, cfg, mockClient)
	ctx.State.Summary.Begin("provision", "acme-web", "il-central-1", "111122223333")
	ctx.State.Summary.Record("network", "acme-web-vpc", "created", "vpc-1")

	require.NoError(t, pinnedProvisioner().Provision(ctx))

	reports := fixture.Reports()
	body, ok := reports["acme-web-reports-111122223333/acme-web/provision-20251103T093000Z.json"]
	require.True(t, ok, "report object not found, stored keys: %v", reports)

	var stored provisioning.Summary
	require.NoError(t, json.Unmarshal(body, &stored))
	assert.Equal(t, "provision", stored.Operation)
	assert.Equal(t, "acme-web", stored.Cluster)
	assert.NotEmpty(t, stored.Duration)

	// The bucket's own reconciliation is part of the archived summary.
	outcomes := map[string]string{}
	for _, res := range stored.Resources {
		outcomes[res.Key] = res.Outcome
	}
	assert.Equal(t, "created", outcomes["acme-web-vpc"])
	assert.Equal(t, "created", outcomes["acme-web-reports-111122223333"])
}

func TestProvisionHonorsConfiguredBucket(t *testing.T) {
	var capturedBucket, capturedKey string
	mockClient := &aws.MockClient{
		PutReportFunc: func(_ context.Context, bucket, key string, _ []byte) error {
			capturedBucket = bucket
			capturedKey = key
			return nil
		},
	}

	cfg := testutil.NewConfigBuilder().WithReport("audit-archive").Build()
	ctx, _ := testutil.NewProvisioningContext(t, cfg, mockClient)
	ctx.State.Summary.Begin("teardown", "acme-web", "il-central-1", "111122223333")

	require.NoError(t, pinnedProvisioner().Provision(ctx))
	assert.Equal(t, "audit-archive", capturedBucket)
	assert.Equal(t, "acme-web/teardown-20251103T093000Z.json", capturedKey)
}

func TestProvisionUploadFailureIsFatal(t *testing.T) {
	mockClient := &aws.MockClient{
		PutReportFunc: func(_ context.Context, _, _ string, _ []byte) error {
			return assert.AnError
		},
	}

	cfg := testutil.NewConfigBuilder().WithReport("audit-archive").Build()
	ctx, _ := testutil.NewProvisioningContext(t, cfg, mockClient)
	ctx.State.Summary.Begin("provision", "acme-web", "il-central-1", "111122223333")

	err := NewProvisioner().Provision(ctx)
	require.ErrorContains(t, err, "uploading run report")
}
