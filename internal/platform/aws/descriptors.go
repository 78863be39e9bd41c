package aws

// Observed-state descriptors, one per resource kind: the provider-assigned
// identifier, the kind's status where it has one, and the attributes later
// stages consume. Descriptors are never mutated; convergence produces a new
// one from a fresh probe.

// Network is an observed VPC.
type Network struct {
	ID   string
	CIDR string
	Tags map[string]string
}

// Subnet is an observed subnet.
type Subnet struct {
	ID               string
	NetworkID        string
	CIDR             string
	AvailabilityZone string
	Public           bool
}

// InternetGateway is an observed internet gateway.
type InternetGateway struct {
	ID       string
	Attached bool
}

// RouteTable is an observed route table.
type RouteTable struct {
	ID         string
	Associated bool
}

// SecurityGroup is an observed security group.
type SecurityGroup struct {
	ID        string
	NetworkID string
}

// Registry is an observed container registry.
type Registry struct {
	ARN  string
	Name string
	URI  string
}

// Cluster is an observed managed cluster.
type Cluster struct {
	ARN                  string
	Name                 string
	Status               string
	Version              string
	Endpoint             string
	CertificateAuthority string
}

// NodeGroup is an observed managed node group.
type NodeGroup struct {
	Name   string
	Status string
}

// Addon is an observed managed add-on. Status is the raw provider value;
// health classification happens in the add-on state machine.
type Addon struct {
	Name    string
	Status  string
	Version string
}

// OIDCProvider is an observed identity provider.
type OIDCProvider struct {
	ARN string
	URL string
}

// Role is an observed IAM role.
type Role struct {
	ARN  string
	Name string
}

// AccessBinding is an observed cluster access grant.
type AccessBinding struct {
	PrincipalARN string
	PolicyARNs   []string
}

// Bucket is an observed report bucket.
type Bucket struct {
	Name string
}
