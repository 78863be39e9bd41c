package addons

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
)

func addonSpec(name string) aws.AddonSpec {
	return aws.AddonSpec{ClusterName: "web", Name: name}
}

func TestReconcile_InstallsWhenAbsent(t *testing.T) {
	t.Parallel()

	creates := 0
	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return nil, nil
		},
		CreateAddonFunc: func(_ context.Context, spec aws.AddonSpec) error {
			creates++
			assert.Equal(t, "coredns", spec.Name)
			return nil
		},
	}

	res, err := NewManager(client).Reconcile(context.Background(), addonSpec("coredns"))
	require.NoError(t, err)
	assert.Equal(t, ActionInstall, res.Action)
	assert.Equal(t, HealthActive, res.Health)
	assert.Nil(t, res.Warning)
	assert.Equal(t, 1, creates)
}

func TestReconcile_ActiveIsNoOp(t *testing.T) {
	t.Parallel()

	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return &aws.Addon{Name: "coredns", Status: "ACTIVE"}, nil
		},
		CreateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			t.Fatal("CreateAddon should not be called for an active add-on")
			return nil
		},
		UpdateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			t.Fatal("UpdateAddon should not be called for an active add-on")
			return nil
		},
		DeleteAddonFunc: func(_ context.Context, _, _ string) error {
			t.Fatal("DeleteAddon should not be called for an active add-on")
			return nil
		},
	}

	res, err := NewManager(client).Reconcile(context.Background(), addonSpec("coredns"))
	require.NoError(t, err)
	assert.Equal(t, ActionNone, res.Action)
	assert.Equal(t, HealthActive, res.Health)
	assert.Nil(t, res.Warning)
}

func TestReconcile_DegradedRecoversByUpdate(t *testing.T) {
	t.Parallel()

	updates := 0
	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return &aws.Addon{Name: "coredns", Status: "DEGRADED"}, nil
		},
		UpdateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			updates++
			return nil
		},
		CreateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			t.Fatal("recreate must not run when the update call succeeds")
			return nil
		},
	}

	res, err := NewManager(client).Reconcile(context.Background(), addonSpec("coredns"))
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, res.Action)
	assert.Equal(t, HealthActive, res.Health)
	assert.Nil(t, res.Warning)
	assert.Equal(t, 1, updates)
}

func TestReconcile_UpdateFailureFallsBackToRecreate(t *testing.T) {
	t.Parallel()

	updates, deletes, creates := 0, 0, 0
	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return &aws.Addon{Name: "coredns", Status: "UPDATE_FAILED"}, nil
		},
		UpdateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			updates++
			return errors.New("update rejected")
		},
		DeleteAddonFunc: func(_ context.Context, _, _ string) error {
			deletes++
			return nil
		},
		CreateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			creates++
			return nil
		},
	}

	res, err := NewManager(client).Reconcile(context.Background(), addonSpec("coredns"))
	require.NoError(t, err)
	assert.Equal(t, ActionRecreate, res.Action)
	assert.Equal(t, HealthActive, res.Health)
	assert.Nil(t, res.Warning)
	assert.Equal(t, 1, updates, "the failed update is not retried")
	assert.Equal(t, 1, deletes)
	assert.Equal(t, 1, creates)
}

func TestReconcile_RecreateAttemptedExactlyOnce(t *testing.T) {
	t.Parallel()

	deletes, creates := 0, 0
	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return &aws.Addon{Name: "coredns", Status: "DEGRADED"}, nil
		},
		UpdateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			return errors.New("update rejected")
		},
		DeleteAddonFunc: func(_ context.Context, _, _ string) error {
			deletes++
			return nil
		},
		CreateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			creates++
			return errors.New("create rejected")
		},
	}

	res, err := NewManager(client).Reconcile(context.Background(), addonSpec("coredns"))
	require.NoError(t, err)
	assert.Equal(t, ActionRecreate, res.Action)
	assert.Equal(t, HealthDegraded, res.Health)
	require.NotNil(t, res.Warning)
	assert.Contains(t, res.Warning.Reason, "recreate install")
	assert.Equal(t, 1, deletes, "the compensating action must not loop")
	assert.Equal(t, 1, creates, "the compensating action must not loop")
}

func TestReconcile_RecreateDeleteFailure(t *testing.T) {
	t.Parallel()

	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return &aws.Addon{Name: "coredns", Status: "DEGRADED"}, nil
		},
		UpdateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			return errors.New("update rejected")
		},
		DeleteAddonFunc: func(_ context.Context, _, _ string) error {
			return errors.New("delete rejected")
		},
		CreateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			t.Fatal("install must not run when the recreate delete fails")
			return nil
		},
	}

	res, err := NewManager(client).Reconcile(context.Background(), addonSpec("coredns"))
	require.NoError(t, err)
	assert.Equal(t, HealthDegraded, res.Health)
	require.NotNil(t, res.Warning)
	assert.Contains(t, res.Warning.Reason, "recreate delete")
}

func TestReconcile_InstallFailureIsDegraded(t *testing.T) {
	t.Parallel()

	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return nil, nil
		},
		CreateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			return errors.New("quota exceeded")
		},
		WaitAddonActiveFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			t.Fatal("a failed install has nothing to wait for")
			return nil, nil
		},
	}

	res, err := NewManager(client).Reconcile(context.Background(), addonSpec("coredns"))
	require.NoError(t, err)
	assert.Equal(t, ActionInstall, res.Action)
	assert.Equal(t, HealthDegraded, res.Health)
	require.NotNil(t, res.Warning)
	assert.Contains(t, res.Warning.Reason, "quota exceeded")
}

func TestReconcile_SettlesUnhealthyAfterUpdate(t *testing.T) {
	t.Parallel()

	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return &aws.Addon{Name: "coredns", Status: "DEGRADED"}, nil
		},
		UpdateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			return nil
		},
		WaitAddonActiveFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return &aws.Addon{Name: "coredns", Status: "DEGRADED"}, nil
		},
	}

	res, err := NewManager(client).Reconcile(context.Background(), addonSpec("coredns"))
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, res.Action)
	assert.Equal(t, HealthDegraded, res.Health)
	require.NotNil(t, res.Warning)
	assert.Contains(t, res.Warning.Reason, "settled in status DEGRADED")
}

func TestReconcile_ProbeErrorIsFatal(t *testing.T) {
	t.Parallel()

	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, _ string) (*aws.Addon, error) {
			return nil, errors.New("API unreachable")
		},
		CreateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			t.Fatal("no convergence may run on a failed probe")
			return nil
		},
		UpdateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			t.Fatal("no convergence may run on a failed probe")
			return nil
		},
	}

	_, err := NewManager(client).Reconcile(context.Background(), addonSpec("coredns"))
	require.Error(t, err)

	var probeErr *aws.ProbeError
	require.ErrorAs(t, err, &probeErr)
	assert.Equal(t, "add-on", probeErr.Kind)
	assert.Equal(t, "coredns", probeErr.Key)
}

func TestReconcileAll_IndependentOutcomes(t *testing.T) {
	t.Parallel()

	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, name string) (*aws.Addon, error) {
			switch name {
			case "vpc-cni":
				return &aws.Addon{Name: name, Status: "ACTIVE"}, nil
			case "coredns":
				return &aws.Addon{Name: name, Status: "DEGRADED"}, nil
			default:
				return nil, nil
			}
		},
		UpdateAddonFunc: func(_ context.Context, _ aws.AddonSpec) error {
			return errors.New("update rejected")
		},
		CreateAddonFunc: func(_ context.Context, spec aws.AddonSpec) error {
			if spec.Name == "coredns" {
				return errors.New("create rejected")
			}
			return nil
		},
	}

	mgr := NewManager(client)
	mgr.Concurrency = 2

	specs := []aws.AddonSpec{addonSpec("vpc-cni"), addonSpec("coredns"), addonSpec("kube-proxy")}
	results, err := mgr.ReconcileAll(context.Background(), specs)
	require.NoError(t, err, "a degraded add-on must not fail the batch")
	require.Len(t, results, 3)

	assert.Equal(t, "vpc-cni", results[0].Name)
	assert.Equal(t, ActionNone, results[0].Action)
	assert.Equal(t, HealthActive, results[0].Health)

	assert.Equal(t, "coredns", results[1].Name)
	assert.Equal(t, ActionRecreate, results[1].Action)
	assert.Equal(t, HealthDegraded, results[1].Health)
	assert.NotNil(t, results[1].Warning)

	assert.Equal(t, "kube-proxy", results[2].Name)
	assert.Equal(t, ActionInstall, results[2].Action)
	assert.Equal(t, HealthActive, results[2].Health)
}

func TestReconcileAll_ProbeFailureFailsBatch(t *testing.T) {
	t.Parallel()

	client := &aws.MockClient{
		GetAddonFunc: func(_ context.Context, _, name string) (*aws.Addon, error) {
			if name == "coredns" {
				return nil, errors.New("API unreachable")
			}
			return &aws.Addon{Name: name, Status: "ACTIVE"}, nil
		},
	}

	specs := []aws.AddonSpec{addonSpec("vpc-cni"), addonSpec("coredns")}
	_, err := NewManager(client).ReconcileAll(context.Background(), specs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coredns")
}
