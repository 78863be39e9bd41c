package aws

// Desired-state specs, one per resource kind. A spec is immutable once
// constructed for a run and carries the identifying key (Name) the probe
// looks the resource up by.

// PortRule is a single ingress rule on the security boundary.
type PortRule struct {
	Protocol string
	Port     int32
	CIDR     string
}

// NetworkSpec describes the VPC.
type NetworkSpec struct {
	Name string
	CIDR string
	Tags map[string]string
}

// SubnetSpec describes one subnet. Public subnets auto-assign public IPs.
type SubnetSpec struct {
	Name             string
	NetworkID        string
	CIDR             string
	AvailabilityZone string
	Public           bool
	Tags             map[string]string
}

// InternetGatewaySpec describes the gateway attached to the VPC.
type InternetGatewaySpec struct {
	Name      string
	NetworkID string
	Tags      map[string]string
}

// RouteTableSpec describes the public route table: default route to the
// gateway, associated with the public subnet.
type RouteTableSpec struct {
	Name      string
	NetworkID string
	GatewayID string
	SubnetID  string
	Tags      map[string]string
}

// SecurityBoundarySpec describes the security group.
type SecurityBoundarySpec struct {
	Name        string
	NetworkID   string
	Description string
	Ingress     []PortRule
	Tags        map[string]string
}

// RegistrySpec describes the container registry.
type RegistrySpec struct {
	Name       string
	ScanOnPush bool
	Tags       map[string]string
}

// ClusterSpec describes the managed cluster.
type ClusterSpec struct {
	Name             string
	Version          string
	RoleARN          string
	SubnetIDs        []string
	SecurityGroupIDs []string
	Tags             map[string]string
}

// NodeGroupSpec describes the managed node group.
type NodeGroupSpec struct {
	Name         string
	ClusterName  string
	RoleARN      string
	SubnetIDs    []string
	InstanceType string
	DesiredSize  int32
	MinSize      int32
	MaxSize      int32
	Tags         map[string]string
}

// AddonSpec describes one managed add-on. An empty Version lets the
// provider pick the default for the cluster version.
type AddonSpec struct {
	ClusterName string
	Name        string
	Version     string
}

// OIDCProviderSpec describes the identity provider. The provider is
// shared/global: ensured, never deleted.
type OIDCProviderSpec struct {
	URL         string
	ClientIDs   []string
	Thumbprints []string
	Tags        map[string]string
}

// RoleSpec describes an IAM role with its managed sub-resources.
type RoleSpec struct {
	Name               string
	Description        string
	TrustPolicy        string
	InlinePolicies     map[string]string
	AttachedPolicyARNs []string
	Tags               map[string]string
}

// AccessBindingSpec grants a principal cluster access through an access
// entry plus an associated access policy.
type AccessBindingSpec struct {
	ClusterName  string
	PrincipalARN string
	PolicyARN    string
}
