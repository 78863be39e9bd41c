package orchestration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/ekstrap/ekstrap/internal/config"
	"github.com/ekstrap/ekstrap/internal/k8s"
	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/provisioning/access"
	"github.com/ekstrap/ekstrap/internal/provisioning/identity"
	testutil "github.com/ekstrap/ekstrap/internal/testing"
)

const workflowTemplate = `name: deploy
jobs:
  deploy:
    runs-on: ubuntu-latest
    steps:
      - uses: aws-actions/configure-aws-credentials@v4
        with:
          role-to-assume: arn:aws:iam::000000000000:role/placeholder
          aws-region: us-east-1
`

// testConfig builds a full config with workflow files and kubeconfig path
// rooted in a temp dir, and reporting enabled against the derived bucket.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "build.yml"), filepath.Join(dir, "deploy.yml")}
	for _, file := range files {
		require.NoError(t, os.WriteFile(file, []byte(workflowTemplate), 0o644))
	}
	return testutil.NewConfigBuilder().
		WithWorkflowFiles(files...).
		WithKubeconfigPath(filepath.Join(dir, "kubeconfig")).
		WithReport("").
		Build()
}

func testReconciler(t *testing.T, cfg *config.Config, infra aws.InfrastructureManager) (*Reconciler, *testutil.RecordingObserver) {
	t.Helper()
	run := &provisioning.RunContext{
		AccountID:    "111122223333",
		Region:       cfg.Region,
		Organization: cfg.GitHub.Organization,
		Repository:   cfg.GitHub.Repository,
		Branch:       cfg.GitHub.Branch,
	}
	r := NewReconciler(infra, cfg, run)
	observer := testutil.NewRecordingObserver()
	r.Observer = observer
	stubExternalDials(r)
	return r, observer
}

func readyNode(name string) runtime.Object {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			},
		},
	}
}

// stubExternalDials replaces the two places a run would leave the provider
// API: the issuer thumbprint dial and the Kubernetes node probe.
func stubExternalDials(r *Reconciler) {
	for _, phase := range r.phases {
		switch p := phase.(type) {
		case *identity.ProviderProvisioner:
			p.Thumbprint = func(context.Context, string) (string, error) {
				return "9e99a48a9960b14926bb7f3b02e22da2b0ab7280", nil
			}
		case *access.Provisioner:
			p.NewClient = func([]byte) (*k8s.Client, error) {
				return k8s.NewWithClientset(fake.NewClientset(readyNode("node-0"), readyNode("node-1"))), nil
			}
		}
	}
}

func outcomesByResource(summary *provisioning.Summary) map[string]string {
	out := make(map[string]string, len(summary.Resources))
	for _, res := range summary.Resources {
		out[res.Kind+" "+res.Key] = res.Outcome
	}
	return out
}

func TestProvisionPhaseOrder(t *testing.T) {
	var names []string
	for _, phase := range ProvisionPhases() {
		names = append(names, phase.Name())
	}
	assert.Equal(t, []string{
		"network",
		"subnets",
		"security-boundary",
		"registry",
		"cluster",
		"compute",
		"add-ons",
		"access",
		"identity-provider",
		"deploy-role",
		"access-binding",
		"gitops",
		"report",
	}, names)
}

func TestProvisionFreshStack(t *testing.T) {
	fixture := testutil.NewInfraFixture()
	mockClient := fixture.Stateful()
	cfg := testConfig(t)
	r, _ := testReconciler(t, cfg, mockClient)

	summary, err := r.Provision(testutil.TestContext(t))
	require.NoError(t, err)

	assert.Equal(t, "provision", summary.Operation)
	assert.Equal(t, "acme-web", summary.Cluster)
	assert.Equal(t, "111122223333", summary.AccountID)
	assert.Empty(t, summary.Warnings)

	counts := summary.Counts()
	assert.Zero(t, counts["present"], "a fresh account has nothing to find")
	assert.Zero(t, counts["degraded"])
	assert.Equal(t, 2, counts["repaired"], "both workflow files get wired up")

	// The deploy role identity flowed end to end into the workflows.
	patched, err := os.ReadFile(cfg.GitHub.WorkflowFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(patched), "role-to-assume: arn:aws:iam::111122223333:role/acme-web-deploy")
	assert.Contains(t, string(patched), "aws-region: il-central-1")

	reports := fixture.Reports()
	require.Len(t, reports, 1)
	for key := range reports {
		assert.True(t, strings.HasPrefix(key, "acme-web-reports-111122223333/acme-web/provision-"), key)
	}
}

func TestProvisionTwiceChangesNothing(t *testing.T) {
	fixture := testutil.NewInfraFixture()
	mockClient := fixture.Stateful()
	cfg := testConfig(t)

	first, _ := testReconciler(t, cfg, mockClient)
	_, err := first.Provision(testutil.TestContext(t))
	require.NoError(t, err)

	second, _ := testReconciler(t, cfg, mockClient)
	summary, err := second.Provision(testutil.TestContext(t))
	require.NoError(t, err)

	for _, res := range summary.Resources {
		assert.Equal(t, "present", res.Outcome, "%s %s", res.Kind, res.Key)
	}
}

func TestProvisionResumesAfterPartialFailure(t *testing.T) {
	fixture := testutil.NewInfraFixture()
	mockClient := fixture.Stateful()

	// The first run converges network through registry, then dies creating
	// the cluster.
	ensureCluster := mockClient.EnsureClusterFunc
	failures := 1
	mockClient.EnsureClusterFunc = func(ctx context.Context, spec aws.ClusterSpec) (*aws.Cluster, aws.Outcome, error) {
		if failures > 0 {
			failures--
			return nil, "", errors.New("rate exceeded")
		}
		return ensureCluster(ctx, spec)
	}

	cfg := testConfig(t)
	r1, _ := testReconciler(t, cfg, mockClient)
	_, err := r1.Provision(testutil.TestContext(t))
	require.ErrorContains(t, err, "cluster phase failed")

	r2, _ := testReconciler(t, cfg, mockClient)
	summary, err := r2.Provision(testutil.TestContext(t))
	require.NoError(t, err)

	outcomes := outcomesByResource(summary)
	assert.Equal(t, "present", outcomes["network acme-web-vpc"])
	assert.Equal(t, "present", outcomes["registry acme-web"])
	assert.Equal(t, "present", outcomes["role acme-web-cluster-role"], "the service role converged before the failure")
	assert.Equal(t, "created", outcomes["cluster acme-web"])
}

func TestProvisionStopsAtFirstFailure(t *testing.T) {
	fixture := testutil.NewInfraFixture()
	fixture.Stateful()
	mockClient := fixture.WithNetworkError(errors.New("vpc quota exceeded"))

	cfg := testConfig(t)
	r, _ := testReconciler(t, cfg, mockClient)

	summary, err := r.Provision(testutil.TestContext(t))
	require.ErrorContains(t, err, "network phase failed")
	require.ErrorContains(t, err, "vpc quota exceeded")
	assert.Empty(t, summary.Resources)
	assert.Empty(t, fixture.Remaining(), "nothing may be created after the first fatal failure")
}

func TestTeardownRemovesEverythingButSharedResources(t *testing.T) {
	fixture := testutil.NewInfraFixture()
	mockClient := fixture.Stateful()
	cfg := testConfig(t)

	up, _ := testReconciler(t, cfg, mockClient)
	_, err := up.Provision(testutil.TestContext(t))
	require.NoError(t, err)

	down, _ := testReconciler(t, cfg, mockClient)
	summary, err := down.Teardown(testutil.TestContext(t))
	require.NoError(t, err)

	assert.Equal(t, "teardown", summary.Operation)
	counts := summary.Counts()
	assert.Equal(t, 1, counts["kept"], "the shared identity provider is reported, never deleted")
	assert.Equal(t, 1, counts["present"], "the report bucket survives and is reused")
	assert.Equal(t, 17, counts["deleted"])

	assert.Equal(t, []string{
		"oidc provider https://token.actions.githubusercontent.com",
		"report bucket acme-web-reports-111122223333",
	}, fixture.Remaining())

	var teardownReports int
	for key := range fixture.Reports() {
		if strings.Contains(key, "/teardown-") {
			teardownReports++
		}
	}
	assert.Equal(t, 1, teardownReports, "teardown archives its own report")

	_, statErr := os.Stat(cfg.KubeconfigPath)
	assert.True(t, os.IsNotExist(statErr), "the kubeconfig entry goes with the cluster")
}

func TestTeardownOfEmptyAccountSucceeds(t *testing.T) {
	fixture := testutil.NewInfraFixture()
	mockClient := fixture.Stateful()
	cfg := testConfig(t)

	r, _ := testReconciler(t, cfg, mockClient)
	summary, err := r.Teardown(testutil.TestContext(t))
	require.NoError(t, err)

	counts := summary.Counts()
	assert.Zero(t, counts["deleted"])
	assert.Zero(t, counts["kept"])
	assert.Equal(t, 1, counts["created"], "the teardown report still ensures its bucket")

	assert.Equal(t, []string{"report bucket acme-web-reports-111122223333"}, fixture.Remaining())
}

func TestTeardownOrdering(t *testing.T) {
	var order []string
	record := func(call string) {
		order = append(order, call)
	}
	mockClient := &aws.MockClient{
		DeleteAccessBindingFunc: func(_ context.Context, clusterName, principalARN string) (aws.Outcome, error) {
			record("access binding " + principalARN)
			return aws.OutcomeDeleted, nil
		},
		DeleteRolePoliciesFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			record("role policies " + name)
			return aws.OutcomeDeleted, nil
		},
		DeleteRoleFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			record("role " + name)
			return aws.OutcomeDeleted, nil
		},
		DeleteNodeGroupFunc: func(_ context.Context, _, name string) (aws.Outcome, error) {
			record("node group " + name)
			return aws.OutcomeDeleted, nil
		},
		DeleteClusterFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			record("cluster " + name)
			return aws.OutcomeDeleted, nil
		},
		DeleteRegistryFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			record("registry " + name)
			return aws.OutcomeDeleted, nil
		},
		DeleteSecurityBoundaryFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			record("security boundary " + name)
			return aws.OutcomeDeleted, nil
		},
		DeleteRouteTableFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			record("route table " + name)
			return aws.OutcomeDeleted, nil
		},
		DeleteSubnetFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			record("subnet " + name)
			return aws.OutcomeDeleted, nil
		},
		DeleteInternetGatewayFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			record("internet gateway " + name)
			return aws.OutcomeDeleted, nil
		},
		DeleteNetworkFunc: func(_ context.Context, name string) (aws.Outcome, error) {
			record("network " + name)
			return aws.OutcomeDeleted, nil
		},
	}

	cfg := testutil.NewConfigBuilder().
		WithKubeconfigPath(filepath.Join(t.TempDir(), "kubeconfig")).
		Build()
	r, _ := testReconciler(t, cfg, mockClient)

	_, err := r.Teardown(testutil.TestContext(t))
	require.NoError(t, err)

	// Reverse provisioning order, sub-resources before their owner. No
	// resource is deleted while a later stage's resource could still
	// depend on it.
	assert.Equal(t, []string{
		"access binding arn:aws:iam::111122223333:role/acme-web-deploy",
		"role policies acme-web-deploy",
		"role acme-web-deploy",
		"node group acme-web-nodes",
		"role policies acme-web-node-role",
		"role acme-web-node-role",
		"cluster acme-web",
		"role policies acme-web-cluster-role",
		"role acme-web-cluster-role",
		"registry acme-web",
		"security boundary acme-web-sg",
		"route table acme-web-public-rt",
		"subnet acme-web-public",
		"subnet acme-web-private",
		"internet gateway acme-web-igw",
		"network acme-web-vpc",
	}, order)
}

func TestTeardownContinuesPastFailures(t *testing.T) {
	var networkDeleted bool
	mockClient := &aws.MockClient{
		DeleteClusterFunc: func(_ context.Context, _ string) (aws.Outcome, error) {
			return "", errors.New("control plane busy")
		},
		DeleteNetworkFunc: func(_ context.Context, _ string) (aws.Outcome, error) {
			networkDeleted = true
			return aws.OutcomeDeleted, nil
		},
	}

	cfg := testutil.NewConfigBuilder().
		WithKubeconfigPath(filepath.Join(t.TempDir(), "kubeconfig")).
		Build()
	r, _ := testReconciler(t, cfg, mockClient)

	_, err := r.Teardown(testutil.TestContext(t))
	require.ErrorContains(t, err, "cluster teardown failed")
	require.ErrorContains(t, err, "control plane busy")
	assert.True(t, networkDeleted, "a stuck cluster must not strand the network behind it")
}
