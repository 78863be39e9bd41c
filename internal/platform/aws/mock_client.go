package aws

import "context"

// MockClient implements InfrastructureManager for tests. Each method
// delegates to its Func field when set and otherwise returns a minimal
// success. Tests override exactly the calls they care about and record
// counters or call order in closures.
type MockClient struct {
	EnsureNetworkFunc          func(ctx context.Context, spec NetworkSpec) (*Network, Outcome, error)
	EnsureSubnetFunc           func(ctx context.Context, spec SubnetSpec) (*Subnet, Outcome, error)
	EnsureInternetGatewayFunc  func(ctx context.Context, spec InternetGatewaySpec) (*InternetGateway, Outcome, error)
	EnsureRouteTableFunc       func(ctx context.Context, spec RouteTableSpec) (*RouteTable, Outcome, error)
	EnsureSecurityBoundaryFunc func(ctx context.Context, spec SecurityBoundarySpec) (*SecurityGroup, Outcome, error)
	GetNetworkFunc             func(ctx context.Context, name string) (*Network, error)
	DeleteSecurityBoundaryFunc func(ctx context.Context, name string) (Outcome, error)
	DeleteRouteTableFunc       func(ctx context.Context, name string) (Outcome, error)
	DeleteInternetGatewayFunc  func(ctx context.Context, name string) (Outcome, error)
	DeleteSubnetFunc           func(ctx context.Context, name string) (Outcome, error)
	DeleteNetworkFunc          func(ctx context.Context, name string) (Outcome, error)

	EnsureRegistryFunc func(ctx context.Context, spec RegistrySpec) (*Registry, Outcome, error)
	DeleteRegistryFunc func(ctx context.Context, name string) (Outcome, error)

	EnsureClusterFunc   func(ctx context.Context, spec ClusterSpec) (*Cluster, Outcome, error)
	GetClusterFunc      func(ctx context.Context, name string) (*Cluster, error)
	DeleteClusterFunc   func(ctx context.Context, name string) (Outcome, error)
	EnsureNodeGroupFunc func(ctx context.Context, spec NodeGroupSpec) (*NodeGroup, Outcome, error)
	DeleteNodeGroupFunc func(ctx context.Context, clusterName, name string) (Outcome, error)

	GetAddonFunc         func(ctx context.Context, clusterName, name string) (*Addon, error)
	ListAddonsFunc       func(ctx context.Context, clusterName string) ([]string, error)
	CreateAddonFunc      func(ctx context.Context, spec AddonSpec) error
	UpdateAddonFunc      func(ctx context.Context, spec AddonSpec) error
	DeleteAddonFunc      func(ctx context.Context, clusterName, name string) error
	WaitAddonActiveFunc  func(ctx context.Context, clusterName, name string) (*Addon, error)
	WaitAddonDeletedFunc func(ctx context.Context, clusterName, name string) error

	EnsureOIDCProviderFunc func(ctx context.Context, spec OIDCProviderSpec) (*OIDCProvider, Outcome, error)
	GetOIDCProviderFunc    func(ctx context.Context, url string) (*OIDCProvider, error)
	EnsureRoleFunc         func(ctx context.Context, spec RoleSpec) (*Role, Outcome, error)
	DeleteRolePoliciesFunc func(ctx context.Context, roleName string) (Outcome, error)
	DeleteRoleFunc         func(ctx context.Context, roleName string) (Outcome, error)

	EnsureAccessBindingFunc func(ctx context.Context, spec AccessBindingSpec) (*AccessBinding, Outcome, error)
	DeleteAccessBindingFunc func(ctx context.Context, clusterName, principalARN string) (Outcome, error)

	AccountIDFunc func(ctx context.Context) (string, error)

	EnsureReportBucketFunc func(ctx context.Context, name string) (Outcome, error)
	PutReportFunc          func(ctx context.Context, bucket, key string, body []byte) error
}

var _ InfrastructureManager = (*MockClient)(nil)

func (m *MockClient) EnsureNetwork(ctx context.Context, spec NetworkSpec) (*Network, Outcome, error) {
	if m.EnsureNetworkFunc != nil {
		return m.EnsureNetworkFunc(ctx, spec)
	}
	return &Network{ID: "vpc-mock", CIDR: spec.CIDR, Tags: spec.Tags}, OutcomeCreated, nil
}

func (m *MockClient) EnsureSubnet(ctx context.Context, spec SubnetSpec) (*Subnet, Outcome, error) {
	if m.EnsureSubnetFunc != nil {
		return m.EnsureSubnetFunc(ctx, spec)
	}
	id := "subnet-mock-private"
	if spec.Public {
		id = "subnet-mock-public"
	}
	return &Subnet{
		ID:               id,
		NetworkID:        spec.NetworkID,
		CIDR:             spec.CIDR,
		AvailabilityZone: spec.AvailabilityZone,
		Public:           spec.Public,
	}, OutcomeCreated, nil
}

func (m *MockClient) EnsureInternetGateway(ctx context.Context, spec InternetGatewaySpec) (*InternetGateway, Outcome, error) {
	if m.EnsureInternetGatewayFunc != nil {
		return m.EnsureInternetGatewayFunc(ctx, spec)
	}
	return &InternetGateway{ID: "igw-mock", Attached: true}, OutcomeCreated, nil
}

func (m *MockClient) EnsureRouteTable(ctx context.Context, spec RouteTableSpec) (*RouteTable, Outcome, error) {
	if m.EnsureRouteTableFunc != nil {
		return m.EnsureRouteTableFunc(ctx, spec)
	}
	return &RouteTable{ID: "rtb-mock", Associated: true}, OutcomeCreated, nil
}

func (m *MockClient) EnsureSecurityBoundary(ctx context.Context, spec SecurityBoundarySpec) (*SecurityGroup, Outcome, error) {
	if m.EnsureSecurityBoundaryFunc != nil {
		return m.EnsureSecurityBoundaryFunc(ctx, spec)
	}
	return &SecurityGroup{ID: "sg-mock", NetworkID: spec.NetworkID}, OutcomeCreated, nil
}

func (m *MockClient) GetNetwork(ctx context.Context, name string) (*Network, error) {
	if m.GetNetworkFunc != nil {
		return m.GetNetworkFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockClient) DeleteSecurityBoundary(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteSecurityBoundaryFunc != nil {
		return m.DeleteSecurityBoundaryFunc(ctx, name)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) DeleteRouteTable(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteRouteTableFunc != nil {
		return m.DeleteRouteTableFunc(ctx, name)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) DeleteInternetGateway(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteInternetGatewayFunc != nil {
		return m.DeleteInternetGatewayFunc(ctx, name)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) DeleteSubnet(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteSubnetFunc != nil {
		return m.DeleteSubnetFunc(ctx, name)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) DeleteNetwork(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteNetworkFunc != nil {
		return m.DeleteNetworkFunc(ctx, name)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) EnsureRegistry(ctx context.Context, spec RegistrySpec) (*Registry, Outcome, error) {
	if m.EnsureRegistryFunc != nil {
		return m.EnsureRegistryFunc(ctx, spec)
	}
	return &Registry{
		ARN:  "arn:aws:ecr:il-central-1:111122223333:repository/" + spec.Name,
		Name: spec.Name,
		URI:  "111122223333.dkr.ecr.il-central-1.amazonaws.com/" + spec.Name,
	}, OutcomeCreated, nil
}

func (m *MockClient) DeleteRegistry(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteRegistryFunc != nil {
		return m.DeleteRegistryFunc(ctx, name)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) EnsureCluster(ctx context.Context, spec ClusterSpec) (*Cluster, Outcome, error) {
	if m.EnsureClusterFunc != nil {
		return m.EnsureClusterFunc(ctx, spec)
	}
	return &Cluster{
		ARN:                  "arn:aws:eks:il-central-1:111122223333:cluster/" + spec.Name,
		Name:                 spec.Name,
		Status:               "ACTIVE",
		Version:              spec.Version,
		Endpoint:             "https://mock.eks.amazonaws.com",
		CertificateAuthority: "bW9jay1jYQ==",
	}, OutcomeCreated, nil
}

func (m *MockClient) GetCluster(ctx context.Context, name string) (*Cluster, error) {
	if m.GetClusterFunc != nil {
		return m.GetClusterFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockClient) DeleteCluster(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteClusterFunc != nil {
		return m.DeleteClusterFunc(ctx, name)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) EnsureNodeGroup(ctx context.Context, spec NodeGroupSpec) (*NodeGroup, Outcome, error) {
	if m.EnsureNodeGroupFunc != nil {
		return m.EnsureNodeGroupFunc(ctx, spec)
	}
	return &NodeGroup{Name: spec.Name, Status: "ACTIVE"}, OutcomeCreated, nil
}

func (m *MockClient) DeleteNodeGroup(ctx context.Context, clusterName, name string) (Outcome, error) {
	if m.DeleteNodeGroupFunc != nil {
		return m.DeleteNodeGroupFunc(ctx, clusterName, name)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) GetAddon(ctx context.Context, clusterName, name string) (*Addon, error) {
	if m.GetAddonFunc != nil {
		return m.GetAddonFunc(ctx, clusterName, name)
	}
	return nil, nil
}

func (m *MockClient) ListAddons(ctx context.Context, clusterName string) ([]string, error) {
	if m.ListAddonsFunc != nil {
		return m.ListAddonsFunc(ctx, clusterName)
	}
	return nil, nil
}

func (m *MockClient) CreateAddon(ctx context.Context, spec AddonSpec) error {
	if m.CreateAddonFunc != nil {
		return m.CreateAddonFunc(ctx, spec)
	}
	return nil
}

func (m *MockClient) UpdateAddon(ctx context.Context, spec AddonSpec) error {
	if m.UpdateAddonFunc != nil {
		return m.UpdateAddonFunc(ctx, spec)
	}
	return nil
}

func (m *MockClient) DeleteAddon(ctx context.Context, clusterName, name string) error {
	if m.DeleteAddonFunc != nil {
		return m.DeleteAddonFunc(ctx, clusterName, name)
	}
	return nil
}

func (m *MockClient) WaitAddonActive(ctx context.Context, clusterName, name string) (*Addon, error) {
	if m.WaitAddonActiveFunc != nil {
		return m.WaitAddonActiveFunc(ctx, clusterName, name)
	}
	return &Addon{Name: name, Status: "ACTIVE"}, nil
}

func (m *MockClient) WaitAddonDeleted(ctx context.Context, clusterName, name string) error {
	if m.WaitAddonDeletedFunc != nil {
		return m.WaitAddonDeletedFunc(ctx, clusterName, name)
	}
	return nil
}

func (m *MockClient) EnsureOIDCProvider(ctx context.Context, spec OIDCProviderSpec) (*OIDCProvider, Outcome, error) {
	if m.EnsureOIDCProviderFunc != nil {
		return m.EnsureOIDCProviderFunc(ctx, spec)
	}
	return &OIDCProvider{
		ARN: "arn:aws:iam::111122223333:oidc-provider/token.actions.githubusercontent.com",
		URL: spec.URL,
	}, OutcomeCreated, nil
}

func (m *MockClient) GetOIDCProvider(ctx context.Context, url string) (*OIDCProvider, error) {
	if m.GetOIDCProviderFunc != nil {
		return m.GetOIDCProviderFunc(ctx, url)
	}
	return nil, nil
}

func (m *MockClient) EnsureRole(ctx context.Context, spec RoleSpec) (*Role, Outcome, error) {
	if m.EnsureRoleFunc != nil {
		return m.EnsureRoleFunc(ctx, spec)
	}
	return &Role{ARN: "arn:aws:iam::111122223333:role/" + spec.Name, Name: spec.Name}, OutcomeCreated, nil
}

func (m *MockClient) DeleteRolePolicies(ctx context.Context, roleName string) (Outcome, error) {
	if m.DeleteRolePoliciesFunc != nil {
		return m.DeleteRolePoliciesFunc(ctx, roleName)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) DeleteRole(ctx context.Context, roleName string) (Outcome, error) {
	if m.DeleteRoleFunc != nil {
		return m.DeleteRoleFunc(ctx, roleName)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) EnsureAccessBinding(ctx context.Context, spec AccessBindingSpec) (*AccessBinding, Outcome, error) {
	if m.EnsureAccessBindingFunc != nil {
		return m.EnsureAccessBindingFunc(ctx, spec)
	}
	return &AccessBinding{PrincipalARN: spec.PrincipalARN, PolicyARNs: []string{spec.PolicyARN}}, OutcomeCreated, nil
}

func (m *MockClient) DeleteAccessBinding(ctx context.Context, clusterName, principalARN string) (Outcome, error) {
	if m.DeleteAccessBindingFunc != nil {
		return m.DeleteAccessBindingFunc(ctx, clusterName, principalARN)
	}
	return OutcomeDeleted, nil
}

func (m *MockClient) AccountID(ctx context.Context) (string, error) {
	if m.AccountIDFunc != nil {
		return m.AccountIDFunc(ctx)
	}
	return "111122223333", nil
}

func (m *MockClient) EnsureReportBucket(ctx context.Context, name string) (Outcome, error) {
	if m.EnsureReportBucketFunc != nil {
		return m.EnsureReportBucketFunc(ctx, name)
	}
	return OutcomeCreated, nil
}

func (m *MockClient) PutReport(ctx context.Context, bucket, key string, body []byte) error {
	if m.PutReportFunc != nil {
		return m.PutReportFunc(ctx, bucket, key, body)
	}
	return nil
}
