// Package aws wraps the AWS APIs behind probe and convergence contracts.
//
// Every resource kind follows the same shape: an Ensure method that probes
// by the identifying key and creates only on absence, and a Delete method
// for which absence is success. All provider parsing and error
// classification stays inside this package; callers see typed specs,
// descriptors, and outcomes.
package aws

import "context"

// NetworkManager defines the interface for managing VPC-level resources.
type NetworkManager interface {
	EnsureNetwork(ctx context.Context, spec NetworkSpec) (*Network, Outcome, error)
	EnsureSubnet(ctx context.Context, spec SubnetSpec) (*Subnet, Outcome, error)
	EnsureInternetGateway(ctx context.Context, spec InternetGatewaySpec) (*InternetGateway, Outcome, error)
	EnsureRouteTable(ctx context.Context, spec RouteTableSpec) (*RouteTable, Outcome, error)
	EnsureSecurityBoundary(ctx context.Context, spec SecurityBoundarySpec) (*SecurityGroup, Outcome, error)
	// GetNetwork probes by name tag, nil when absent.
	GetNetwork(ctx context.Context, name string) (*Network, error)
	DeleteSecurityBoundary(ctx context.Context, name string) (Outcome, error)
	DeleteRouteTable(ctx context.Context, name string) (Outcome, error)
	DeleteInternetGateway(ctx context.Context, name string) (Outcome, error)
	DeleteSubnet(ctx context.Context, name string) (Outcome, error)
	DeleteNetwork(ctx context.Context, name string) (Outcome, error)
}

// RegistryManager defines the interface for managing the container registry.
type RegistryManager interface {
	EnsureRegistry(ctx context.Context, spec RegistrySpec) (*Registry, Outcome, error)
	// DeleteRegistry force-deletes the repository including stored images.
	DeleteRegistry(ctx context.Context, name string) (Outcome, error)
}

// ClusterManager defines the interface for the managed cluster and its
// compute.
type ClusterManager interface {
	EnsureCluster(ctx context.Context, spec ClusterSpec) (*Cluster, Outcome, error)
	GetCluster(ctx context.Context, name string) (*Cluster, error)
	DeleteCluster(ctx context.Context, name string) (Outcome, error)
	EnsureNodeGroup(ctx context.Context, spec NodeGroupSpec) (*NodeGroup, Outcome, error)
	DeleteNodeGroup(ctx context.Context, clusterName, name string) (Outcome, error)
}

// AddonManager exposes the add-on lifecycle primitives the health state
// machine drives. Unlike other kinds there is no Ensure here: the state
// machine owns the decision logic.
type AddonManager interface {
	// GetAddon probes one add-on, nil when not installed.
	GetAddon(ctx context.Context, clusterName, name string) (*Addon, error)
	ListAddons(ctx context.Context, clusterName string) ([]string, error)
	CreateAddon(ctx context.Context, spec AddonSpec) error
	UpdateAddon(ctx context.Context, spec AddonSpec) error
	DeleteAddon(ctx context.Context, clusterName, name string) error
	// WaitAddonActive blocks until the add-on settles, then re-probes.
	WaitAddonActive(ctx context.Context, clusterName, name string) (*Addon, error)
	WaitAddonDeleted(ctx context.Context, clusterName, name string) error
}

// IdentityManager defines the interface for the IAM trust chain.
type IdentityManager interface {
	EnsureOIDCProvider(ctx context.Context, spec OIDCProviderSpec) (*OIDCProvider, Outcome, error)
	// GetOIDCProvider probes by issuer URL, nil when absent.
	GetOIDCProvider(ctx context.Context, url string) (*OIDCProvider, error)
	EnsureRole(ctx context.Context, spec RoleSpec) (*Role, Outcome, error)
	// DeleteRolePolicies removes the role's managed sub-resources (inline
	// policies, attachments). Must run before DeleteRole.
	DeleteRolePolicies(ctx context.Context, roleName string) (Outcome, error)
	DeleteRole(ctx context.Context, roleName string) (Outcome, error)
}

// AccessManager defines the interface for cluster access grants.
type AccessManager interface {
	EnsureAccessBinding(ctx context.Context, spec AccessBindingSpec) (*AccessBinding, Outcome, error)
	DeleteAccessBinding(ctx context.Context, clusterName, principalARN string) (Outcome, error)
}

// AccountResolver discovers the active account.
type AccountResolver interface {
	AccountID(ctx context.Context) (string, error)
}

// ReportStore persists run summaries.
type ReportStore interface {
	// EnsureReportBucket creates the bucket on first use. The bucket is
	// shared across runs and never deleted.
	EnsureReportBucket(ctx context.Context, name string) (Outcome, error)
	PutReport(ctx context.Context, bucket, key string, body []byte) error
}

// InfrastructureManager combines all provider interfaces.
type InfrastructureManager interface {
	NetworkManager
	RegistryManager
	ClusterManager
	AddonManager
	IdentityManager
	AccessManager
	AccountResolver
	ReportStore
}
