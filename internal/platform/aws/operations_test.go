package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- EnsureOperation ---

func TestEnsureOperation_ReturnsExisting(t *testing.T) {
	t.Parallel()

	existing := &Registry{ARN: "arn:aws:ecr:il-central-1:111122223333:repository/demo", Name: "demo"}

	op := &EnsureOperation[Registry]{
		Key:          "demo",
		ResourceType: "registry",
		Probe: func(_ context.Context) (*Registry, error) {
			return existing, nil
		},
		Create: func(_ context.Context) (*Registry, error) {
			t.Fatal("Create should not be called when the resource exists")
			return nil, nil
		},
	}

	got, outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePresent, outcome)
	assert.Equal(t, existing, got)
}

func TestEnsureOperation_CreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	created := &Registry{Name: "demo"}
	probes := 0
	createCalled := false

	op := &EnsureOperation[Registry]{
		Key:          "demo",
		ResourceType: "registry",
		Probe: func(_ context.Context) (*Registry, error) {
			probes++
			if createCalled {
				return created, nil
			}
			return nil, nil
		},
		Create: func(_ context.Context) (*Registry, error) {
			createCalled = true
			return created, nil
		},
	}

	got, outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, created, got)
	assert.Equal(t, 2, probes, "create must be confirmed by a second probe")
}

func TestEnsureOperation_SecondRunMutatesNothing(t *testing.T) {
	t.Parallel()

	var stored *Registry
	creates := 0

	op := &EnsureOperation[Registry]{
		Key:          "demo",
		ResourceType: "registry",
		Probe: func(_ context.Context) (*Registry, error) {
			return stored, nil
		},
		Create: func(_ context.Context) (*Registry, error) {
			creates++
			stored = &Registry{Name: "demo"}
			return stored, nil
		},
	}

	_, outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	_, outcome, err = op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePresent, outcome)
	assert.Equal(t, 1, creates, "re-running against converged state must not create again")
}

func TestEnsureOperation_ProbeErrorIsFatal(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[Registry]{
		Key:          "demo",
		ResourceType: "registry",
		Probe: func(_ context.Context) (*Registry, error) {
			return nil, errors.New("listing returned two registries")
		},
		Create: func(_ context.Context) (*Registry, error) {
			t.Fatal("Create should not be called when the probe fails")
			return nil, nil
		},
	}

	_, _, err := op.Execute(context.Background())
	require.Error(t, err)

	var probeErr *ProbeError
	require.ErrorAs(t, err, &probeErr)
	assert.Equal(t, "registry", probeErr.Kind)
	assert.Equal(t, "demo", probeErr.Key)
	assert.Contains(t, err.Error(), "listing returned two registries")
}

func TestEnsureOperation_CreateError(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[Registry]{
		Key:          "demo",
		ResourceType: "registry",
		Probe: func(_ context.Context) (*Registry, error) {
			return nil, nil
		},
		Create: func(_ context.Context) (*Registry, error) {
			return nil, errors.New("quota exceeded")
		},
	}

	_, _, err := op.Execute(context.Background())
	require.Error(t, err)

	var convErr *ConvergenceError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "create", convErr.Action)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestEnsureOperation_CreatedButNotDiscoverable(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[Registry]{
		Key:          "demo",
		ResourceType: "registry",
		Probe: func(_ context.Context) (*Registry, error) {
			return nil, nil
		},
		Create: func(_ context.Context) (*Registry, error) {
			return &Registry{Name: "demo"}, nil
		},
	}

	_, _, err := op.Execute(context.Background())
	require.Error(t, err)

	var convErr *ConvergenceError
	require.ErrorAs(t, err, &convErr)
	assert.Contains(t, err.Error(), "not discoverable")
}

func TestEnsureOperation_RepairsUnhealthy(t *testing.T) {
	t.Parallel()

	unhealthy := &Cluster{Name: "demo", Status: "DEGRADED"}
	repaired := &Cluster{Name: "demo", Status: "ACTIVE"}

	op := &EnsureOperation[Cluster]{
		Key:          "demo",
		ResourceType: "cluster",
		Probe: func(_ context.Context) (*Cluster, error) {
			return unhealthy, nil
		},
		Create: func(_ context.Context) (*Cluster, error) {
			t.Fatal("Create should not be called for an existing resource")
			return nil, nil
		},
		NeedsRepair: func(existing *Cluster) bool {
			return existing.Status != "ACTIVE"
		},
		Repair: func(_ context.Context, existing *Cluster) (*Cluster, error) {
			assert.Equal(t, unhealthy, existing)
			return repaired, nil
		},
	}

	got, outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeRepaired, outcome)
	assert.Equal(t, repaired, got)
}

func TestEnsureOperation_HealthySkipsRepair(t *testing.T) {
	t.Parallel()

	healthy := &Cluster{Name: "demo", Status: "ACTIVE"}

	op := &EnsureOperation[Cluster]{
		Key:          "demo",
		ResourceType: "cluster",
		Probe: func(_ context.Context) (*Cluster, error) {
			return healthy, nil
		},
		NeedsRepair: func(existing *Cluster) bool {
			return existing.Status != "ACTIVE"
		},
		Repair: func(_ context.Context, _ *Cluster) (*Cluster, error) {
			t.Fatal("Repair should not be called for a healthy resource")
			return nil, nil
		},
	}

	got, outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePresent, outcome)
	assert.Equal(t, healthy, got)
}

func TestEnsureOperation_RepairError(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[Cluster]{
		Key:          "demo",
		ResourceType: "cluster",
		Probe: func(_ context.Context) (*Cluster, error) {
			return &Cluster{Name: "demo", Status: "DEGRADED"}, nil
		},
		NeedsRepair: func(_ *Cluster) bool { return true },
		Repair: func(_ context.Context, _ *Cluster) (*Cluster, error) {
			return nil, errors.New("update rejected")
		},
	}

	_, _, err := op.Execute(context.Background())
	require.Error(t, err)

	var convErr *ConvergenceError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "repair", convErr.Action)
	assert.Contains(t, err.Error(), "update rejected")
}

// --- DeleteOperation ---

func TestDeleteOperation_ResourceExists(t *testing.T) {
	t.Parallel()

	role := &Role{ARN: "arn:aws:iam::111122223333:role/demo-deploy", Name: "demo-deploy"}
	deleteCalled := false

	op := &DeleteOperation[Role]{
		Key:          "demo-deploy",
		ResourceType: "role",
		Probe: func(_ context.Context) (*Role, error) {
			return role, nil
		},
		Delete: func(_ context.Context, existing *Role) error {
			deleteCalled = true
			assert.Equal(t, role, existing)
			return nil
		},
	}

	outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
	assert.True(t, deleteCalled, "Delete should have been called")
}

func TestDeleteOperation_ResourceAbsent(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[Role]{
		Key:          "demo-deploy",
		ResourceType: "role",
		Probe: func(_ context.Context) (*Role, error) {
			return nil, nil
		},
		Delete: func(_ context.Context, _ *Role) error {
			t.Fatal("Delete should not be called for an absent resource")
			return nil
		},
	}

	outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAbsent, outcome)
}

func TestDeleteOperation_ProbeErrorIsFatal(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[Role]{
		Key:          "demo-deploy",
		ResourceType: "role",
		Probe: func(_ context.Context) (*Role, error) {
			return nil, errors.New("API unreachable")
		},
		Delete: func(_ context.Context, _ *Role) error {
			t.Fatal("Delete should not be called when the probe fails")
			return nil
		},
	}

	_, err := op.Execute(context.Background())
	require.Error(t, err)

	var probeErr *ProbeError
	require.ErrorAs(t, err, &probeErr)
	assert.Contains(t, err.Error(), "API unreachable")
}

func TestDeleteOperation_VanishedDuringDelete(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[Role]{
		Key:          "demo-deploy",
		ResourceType: "role",
		Probe: func(_ context.Context) (*Role, error) {
			return &Role{Name: "demo-deploy"}, nil
		},
		Delete: func(_ context.Context, _ *Role) error {
			return &smithy.GenericAPIError{Code: "NoSuchEntity", Message: "gone"}
		},
	}

	outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
}

func TestDeleteOperation_RetryableErrorRetried(t *testing.T) {
	t.Parallel()

	attempts := 0

	op := &DeleteOperation[Network]{
		Key:          "demo-vpc",
		ResourceType: "network",
		Probe: func(_ context.Context) (*Network, error) {
			return &Network{ID: "vpc-0abc"}, nil
		},
		Delete: func(_ context.Context, _ *Network) error {
			attempts++
			if attempts < 2 {
				return &smithy.GenericAPIError{Code: "DependencyViolation", Message: "has dependencies"}
			}
			return nil
		},
	}

	outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
	assert.Equal(t, 2, attempts, "should have retried after a dependency violation")
}

func TestDeleteOperation_NonRetryableFailsImmediately(t *testing.T) {
	t.Parallel()

	attempts := 0

	op := &DeleteOperation[Role]{
		Key:          "demo-deploy",
		ResourceType: "role",
		Probe: func(_ context.Context) (*Role, error) {
			return &Role{Name: "demo-deploy"}, nil
		},
		Delete: func(_ context.Context, _ *Role) error {
			attempts++
			return &smithy.GenericAPIError{Code: "AccessDenied", Message: "not authorized"}
		},
	}

	_, err := op.Execute(context.Background())
	require.Error(t, err)

	var convErr *ConvergenceError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "delete", convErr.Action)
	assert.Equal(t, 1, attempts, "access errors must not be retried")
}

func TestDeleteOperation_WaitRuns(t *testing.T) {
	t.Parallel()

	cluster := &Cluster{Name: "demo"}
	waitCalled := false

	op := &DeleteOperation[Cluster]{
		Key:          "demo",
		ResourceType: "cluster",
		Probe: func(_ context.Context) (*Cluster, error) {
			return cluster, nil
		},
		Delete: func(_ context.Context, _ *Cluster) error {
			return nil
		},
		Wait: func(_ context.Context, existing *Cluster) error {
			waitCalled = true
			assert.Equal(t, cluster, existing)
			return nil
		},
	}

	outcome, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
	assert.True(t, waitCalled, "Wait should have been called")
}

func TestDeleteOperation_WaitError(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[Cluster]{
		Key:          "demo",
		ResourceType: "cluster",
		Probe: func(_ context.Context) (*Cluster, error) {
			return &Cluster{Name: "demo"}, nil
		},
		Delete: func(_ context.Context, _ *Cluster) error {
			return nil
		},
		Wait: func(_ context.Context, _ *Cluster) error {
			return errors.New("deadline exceeded")
		},
	}

	_, err := op.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waiting for deletion")
}
