package testing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
)

// InfraFixture provides pre-configured mock infrastructure for common test
// scenarios.
type InfraFixture struct {
	mock    *aws.MockClient
	account *memoryAccount
}

// NewInfraFixture creates a new infrastructure fixture.
func NewInfraFixture() *InfraFixture {
	return &InfraFixture{
		mock: &aws.MockClient{},
	}
}

// Mock returns the underlying MockClient for custom configuration.
func (f *InfraFixture) Mock() *aws.MockClient {
	return f.mock
}

// Stateful wires the mock to an in-memory account: the first ensure of a
// resource creates it, later ensures find it present, deletes remove it and
// report absence once gone. Consecutive runs therefore converge the way
// they would against a real account.
func (f *InfraFixture) Stateful() *aws.MockClient {
	s := newMemoryAccount()
	f.account = s

	m := f.mock
	m.EnsureNetworkFunc = s.ensureNetwork
	m.EnsureSubnetFunc = s.ensureSubnet
	m.EnsureInternetGatewayFunc = s.ensureInternetGateway
	m.EnsureRouteTableFunc = s.ensureRouteTable
	m.EnsureSecurityBoundaryFunc = s.ensureSecurityBoundary
	m.GetNetworkFunc = s.getNetwork
	m.DeleteSecurityBoundaryFunc = s.delete("security boundary")
	m.DeleteRouteTableFunc = s.delete("route table")
	m.DeleteInternetGatewayFunc = s.delete("internet gateway")
	m.DeleteSubnetFunc = s.delete("subnet")
	m.DeleteNetworkFunc = s.delete("network")

	m.EnsureRegistryFunc = s.ensureRegistry
	m.DeleteRegistryFunc = s.delete("registry")

	m.EnsureClusterFunc = s.ensureCluster
	m.GetClusterFunc = s.getCluster
	m.DeleteClusterFunc = s.delete("cluster")
	m.EnsureNodeGroupFunc = s.ensureNodeGroup
	m.DeleteNodeGroupFunc = s.deleteNodeGroup

	m.GetAddonFunc = s.getAddon
	m.ListAddonsFunc = s.listAddons
	m.CreateAddonFunc = s.createAddon
	m.UpdateAddonFunc = s.updateAddon
	m.DeleteAddonFunc = s.deleteAddon
	m.WaitAddonActiveFunc = s.getAddon
	m.WaitAddonDeletedFunc = func(ctx context.Context, clusterName, name string) error { return nil }

	m.EnsureOIDCProviderFunc = s.ensureOIDCProvider
	m.GetOIDCProviderFunc = s.getOIDCProvider
	m.EnsureRoleFunc = s.ensureRole
	m.DeleteRolePoliciesFunc = s.deleteRolePolicies
	m.DeleteRoleFunc = s.delete("role")

	m.EnsureAccessBindingFunc = s.ensureAccessBinding
	m.DeleteAccessBindingFunc = s.deleteAccessBinding

	m.EnsureReportBucketFunc = s.ensureReportBucket
	m.PutReportFunc = s.putReport

	return m
}

// WithNetworkError configures the mock to fail on network reconciliation.
func (f *InfraFixture) WithNetworkError(err error) *aws.MockClient {
	f.mock.EnsureNetworkFunc = func(_ context.Context, _ aws.NetworkSpec) (*aws.Network, aws.Outcome, error) {
		return nil, "", err
	}
	return f.mock
}

// DegradedAddon makes one add-on settle degraded instead of active. Call it
// after Stateful when combining the two.
func (f *InfraFixture) DegradedAddon(name string) *aws.MockClient {
	prior := f.mock.WaitAddonActiveFunc
	f.mock.WaitAddonActiveFunc = func(ctx context.Context, clusterName, addon string) (*aws.Addon, error) {
		if addon == name {
			return &aws.Addon{Name: addon, Status: "DEGRADED"}, nil
		}
		if prior != nil {
			return prior(ctx, clusterName, addon)
		}
		return &aws.Addon{Name: addon, Status: "ACTIVE"}, nil
	}
	return f.mock
}

// Remaining lists the resources still present in the stateful account as
// "kind name" strings, sorted. Useful for asserting teardown left only what
// it should.
func (f *InfraFixture) Remaining() []string {
	if f.account == nil {
		return nil
	}
	return f.account.remaining()
}

// Reports returns a copy of every report object written to the stateful
// account, keyed "bucket/key".
func (f *InfraFixture) Reports() map[string][]byte {
	if f.account == nil {
		return nil
	}
	return f.account.reportObjects()
}

// memoryAccount is the store behind Stateful. Resources live in one map
// keyed by kind and name; typed descriptor maps hang off it. Every method
// locks because add-ons reconcile concurrently.
type memoryAccount struct {
	mu sync.Mutex

	descriptors map[string]any    // "kind name" -> descriptor
	reports     map[string][]byte // "bucket/key" -> body
}

func newMemoryAccount() *memoryAccount {
	return &memoryAccount{
		descriptors: make(map[string]any),
		reports:     make(map[string][]byte),
	}
}

func storeKey(kind, name string) string {
	return kind + " " + name
}

func (s *memoryAccount) remaining() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.descriptors))
	for k := range s.descriptors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *memoryAccount) reportObjects() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.reports))
	for k, v := range s.reports {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// ensure looks a descriptor up and stores the built one when absent.
func ensure[T any](s *memoryAccount, kind, name string, build func() *T) (*T, aws.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.descriptors[storeKey(kind, name)]; ok {
		return existing.(*T), aws.OutcomePresent, nil
	}
	created := build()
	s.descriptors[storeKey(kind, name)] = created
	return created, aws.OutcomeCreated, nil
}

func get[T any](s *memoryAccount, kind, name string) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.descriptors[storeKey(kind, name)]; ok {
		return existing.(*T)
	}
	return nil
}

func (s *memoryAccount) delete(kind string) func(context.Context, string) (aws.Outcome, error) {
	return func(_ context.Context, name string) (aws.Outcome, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.descriptors[storeKey(kind, name)]; !ok {
			return aws.OutcomeAbsent, nil
		}
		delete(s.descriptors, storeKey(kind, name))
		return aws.OutcomeDeleted, nil
	}
}

func (s *memoryAccount) ensureNetwork(_ context.Context, spec aws.NetworkSpec) (*aws.Network, aws.Outcome, error) {
	return ensure(s, "network", spec.Name, func() *aws.Network {
		return &aws.Network{ID: "vpc-" + spec.Name, CIDR: spec.CIDR, Tags: spec.Tags}
	})
}

func (s *memoryAccount) getNetwork(_ context.Context, name string) (*aws.Network, error) {
	return get[aws.Network](s, "network", name), nil
}

func (s *memoryAccount) ensureSubnet(_ context.Context, spec aws.SubnetSpec) (*aws.Subnet, aws.Outcome, error) {
	return ensure(s, "subnet", spec.Name, func() *aws.Subnet {
		return &aws.Subnet{
			ID:               "subnet-" + spec.Name,
			NetworkID:        spec.NetworkID,
			CIDR:             spec.CIDR,
			AvailabilityZone: spec.AvailabilityZone,
			Public:           spec.Public,
		}
	})
}

func (s *memoryAccount) ensureInternetGateway(_ context.Context, spec aws.InternetGatewaySpec) (*aws.InternetGateway, aws.Outcome, error) {
	return ensure(s, "internet gateway", spec.Name, func() *aws.InternetGateway {
		return &aws.InternetGateway{ID: "igw-" + spec.Name, Attached: true}
	})
}

func (s *memoryAccount) ensureRouteTable(_ context.Context, spec aws.RouteTableSpec) (*aws.RouteTable, aws.Outcome, error) {
	return ensure(s, "route table", spec.Name, func() *aws.RouteTable {
		return &aws.RouteTable{ID: "rtb-" + spec.Name, Associated: true}
	})
}

func (s *memoryAccount) ensureSecurityBoundary(_ context.Context, spec aws.SecurityBoundarySpec) (*aws.SecurityGroup, aws.Outcome, error) {
	return ensure(s, "security boundary", spec.Name, func() *aws.SecurityGroup {
		return &aws.SecurityGroup{ID: "sg-" + spec.Name, NetworkID: spec.NetworkID}
	})
}

func (s *memoryAccount) ensureRegistry(_ context.Context, spec aws.RegistrySpec) (*aws.Registry, aws.Outcome, error) {
	return ensure(s, "registry", spec.Name, func() *aws.Registry {
		return &aws.Registry{
			ARN:  "arn:aws:ecr:il-central-1:111122223333:repository/" + spec.Name,
			Name: spec.Name,
			URI:  "111122223333.dkr.ecr.il-central-1.amazonaws.com/" + spec.Name,
		}
	})
}

func (s *memoryAccount) ensureCluster(_ context.Context, spec aws.ClusterSpec) (*aws.Cluster, aws.Outcome, error) {
	return ensure(s, "cluster", spec.Name, func() *aws.Cluster {
		return &aws.Cluster{
			ARN:                  "arn:aws:eks:il-central-1:111122223333:cluster/" + spec.Name,
			Name:                 spec.Name,
			Status:               "ACTIVE",
			Version:              spec.Version,
			Endpoint:             "https://" + spec.Name + ".eks.amazonaws.com",
			CertificateAuthority: "bW9jay1jYQ==",
		}
	})
}

func (s *memoryAccount) getCluster(_ context.Context, name string) (*aws.Cluster, error) {
	return get[aws.Cluster](s, "cluster", name), nil
}

func (s *memoryAccount) ensureNodeGroup(_ context.Context, spec aws.NodeGroupSpec) (*aws.NodeGroup, aws.Outcome, error) {
	return ensure(s, "node group", spec.ClusterName+"/"+spec.Name, func() *aws.NodeGroup {
		return &aws.NodeGroup{Name: spec.Name, Status: "ACTIVE"}
	})
}

func (s *memoryAccount) deleteNodeGroup(ctx context.Context, clusterName, name string) (aws.Outcome, error) {
	return s.delete("node group")(ctx, clusterName+"/"+name)
}

func (s *memoryAccount) getAddon(_ context.Context, clusterName, name string) (*aws.Addon, error) {
	return get[aws.Addon](s, "add-on", clusterName+"/"+name), nil
}

func (s *memoryAccount) listAddons(_ context.Context, clusterName string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	prefix := storeKey("add-on", clusterName+"/")
	for k := range s.descriptors {
		if strings.HasPrefix(k, prefix) {
			names = append(names, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *memoryAccount) createAddon(_ context.Context, spec aws.AddonSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey("add-on", spec.ClusterName+"/"+spec.Name)
	if _, ok := s.descriptors[key]; ok {
		return fmt.Errorf("add-on %s already exists", spec.Name)
	}
	s.descriptors[key] = &aws.Addon{Name: spec.Name, Status: "ACTIVE", Version: spec.Version}
	return nil
}

func (s *memoryAccount) updateAddon(_ context.Context, spec aws.AddonSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey("add-on", spec.ClusterName+"/"+spec.Name)
	if _, ok := s.descriptors[key]; !ok {
		return fmt.Errorf("add-on %s not found", spec.Name)
	}
	s.descriptors[key] = &aws.Addon{Name: spec.Name, Status: "ACTIVE", Version: spec.Version}
	return nil
}

func (s *memoryAccount) deleteAddon(_ context.Context, clusterName, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.descriptors, storeKey("add-on", clusterName+"/"+name))
	return nil
}

func (s *memoryAccount) ensureOIDCProvider(_ context.Context, spec aws.OIDCProviderSpec) (*aws.OIDCProvider, aws.Outcome, error) {
	return ensure(s, "oidc provider", spec.URL, func() *aws.OIDCProvider {
		host := strings.TrimPrefix(spec.URL, "https://")
		return &aws.OIDCProvider{
			ARN: "arn:aws:iam::111122223333:oidc-provider/" + host,
			URL: spec.URL,
		}
	})
}

func (s *memoryAccount) getOIDCProvider(_ context.Context, url string) (*aws.OIDCProvider, error) {
	return get[aws.OIDCProvider](s, "oidc provider", url), nil
}

func (s *memoryAccount) ensureRole(_ context.Context, spec aws.RoleSpec) (*aws.Role, aws.Outcome, error) {
	return ensure(s, "role", spec.Name, func() *aws.Role {
		return &aws.Role{ARN: "arn:aws:iam::111122223333:role/" + spec.Name, Name: spec.Name}
	})
}

// deleteRolePolicies reports deletion while the role exists and absence
// once it is gone, mirroring how inline policies live and die with their
// role.
func (s *memoryAccount) deleteRolePolicies(_ context.Context, roleName string) (aws.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.descriptors[storeKey("role", roleName)]; !ok {
		return aws.OutcomeAbsent, nil
	}
	return aws.OutcomeDeleted, nil
}

func (s *memoryAccount) ensureAccessBinding(_ context.Context, spec aws.AccessBindingSpec) (*aws.AccessBinding, aws.Outcome, error) {
	return ensure(s, "access binding", spec.ClusterName+"/"+spec.PrincipalARN, func() *aws.AccessBinding {
		return &aws.AccessBinding{PrincipalARN: spec.PrincipalARN, PolicyARNs: []string{spec.PolicyARN}}
	})
}

func (s *memoryAccount) deleteAccessBinding(ctx context.Context, clusterName, principalARN string) (aws.Outcome, error) {
	return s.delete("access binding")(ctx, clusterName+"/"+principalARN)
}

func (s *memoryAccount) ensureReportBucket(_ context.Context, name string) (aws.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey("report bucket", name)
	if _, ok := s.descriptors[key]; ok {
		return aws.OutcomePresent, nil
	}
	s.descriptors[key] = &aws.Bucket{Name: name}
	return aws.OutcomeCreated, nil
}

func (s *memoryAccount) putReport(_ context.Context, bucket, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.descriptors[storeKey("report bucket", bucket)]; !ok {
		return fmt.Errorf("bucket %q does not exist", bucket)
	}
	s.reports[bucket+"/"+key] = append([]byte(nil), body...)
	return nil
}
