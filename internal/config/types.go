package config

// Config holds the full provisioning configuration for one cluster.
type Config struct {
	ClusterName string `mapstructure:"cluster_name" yaml:"cluster_name"`
	Region      string `mapstructure:"region" yaml:"region"` // e.g. il-central-1, eu-west-1

	// KubernetesVersion pins the control plane version, e.g. "1.31".
	// When empty the service picks its default for new clusters.
	KubernetesVersion string `mapstructure:"kubernetes_version" yaml:"kubernetes_version"`

	// Network Configuration
	Network NetworkConfig `mapstructure:"network" yaml:"network"`

	// Security Configuration
	Security SecurityConfig `mapstructure:"security" yaml:"security"`

	// Registry Configuration
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`

	// Compute Configuration
	Compute ComputeConfig `mapstructure:"compute" yaml:"compute"`

	// Addons Configuration
	Addons AddonsConfig `mapstructure:"addons" yaml:"addons"`

	// GitHub Configuration
	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`

	// Report Configuration
	Report ReportConfig `mapstructure:"report" yaml:"report"`

	// KubeconfigPath specifies where to write the kubeconfig file.
	// Default: "kubeconfig"
	KubeconfigPath string `mapstructure:"kubeconfig_path" yaml:"kubeconfig_path"`
}

// NetworkConfig defines the VPC and subnet layout.
type NetworkConfig struct {
	// VPCCIDR is the address block of the cluster VPC.
	// Default: "10.0.0.0/16"
	VPCCIDR string `mapstructure:"vpc_cidr" yaml:"vpc_cidr"`

	// PublicSubnetCIDR and PrivateSubnetCIDR override the subnet blocks.
	// When empty they are carved out of VPCCIDR as the first two /20s.
	PublicSubnetCIDR  string `mapstructure:"public_subnet_cidr" yaml:"public_subnet_cidr"`
	PrivateSubnetCIDR string `mapstructure:"private_subnet_cidr" yaml:"private_subnet_cidr"`

	// AvailabilityZones places the public and private subnet.
	// Default: the region's "a" and "b" zones.
	AvailabilityZones []string `mapstructure:"availability_zones" yaml:"availability_zones"`
}

// SecurityConfig describes the inbound rules applied to the cluster
// security boundary. Egress is always open.
type SecurityConfig struct {
	// IngressRules to allow.
	// Default: tcp/443 from 0.0.0.0/0
	IngressRules []IngressRule `mapstructure:"ingress_rules" yaml:"ingress_rules"`
}

// IngressRule is one inbound allowance on the security boundary.
type IngressRule struct {
	Protocol string `mapstructure:"protocol" yaml:"protocol"` // tcp, udp
	Port     int    `mapstructure:"port" yaml:"port"`
	CIDR     string `mapstructure:"cidr" yaml:"cidr"`
}

// RegistryConfig controls the container image repository.
type RegistryConfig struct {
	// ScanOnPush enables image scanning on push.
	// Default: true
	ScanOnPush *bool `mapstructure:"scan_on_push" yaml:"scan_on_push"`
}

// ScanEnabled reports the effective scan-on-push setting.
func (r *RegistryConfig) ScanEnabled() bool {
	return r.ScanOnPush == nil || *r.ScanOnPush
}

// ComputeConfig sizes the managed node group.
type ComputeConfig struct {
	// InstanceType of the worker nodes.
	// Default: "t3.medium"
	InstanceType string `mapstructure:"instance_type" yaml:"instance_type"`

	// DesiredSize, MinSize, and MaxSize bound the node group.
	// Default: 2 / 1 / 3
	DesiredSize int `mapstructure:"desired_size" yaml:"desired_size"`
	MinSize     int `mapstructure:"min_size" yaml:"min_size"`
	MaxSize     int `mapstructure:"max_size" yaml:"max_size"`
}

// AddonsConfig lists the managed add-ons reconciled once the cluster is up.
type AddonsConfig struct {
	// Names of the add-ons to manage.
	// Default: vpc-cni, coredns, kube-proxy
	Names []string `mapstructure:"names" yaml:"names"`

	// Concurrency bounds how many add-ons are reconciled in parallel.
	// Default: 3
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// GitHubConfig identifies the repository whose workflows deploy to the
// cluster. Organization and Repository are discovered from the origin
// remote when left empty.
type GitHubConfig struct {
	Organization string `mapstructure:"organization" yaml:"organization"`
	Repository   string `mapstructure:"repository" yaml:"repository"`

	// Branch allowed to assume the deploy role.
	// Default: "main"
	Branch string `mapstructure:"branch" yaml:"branch"`

	// WorkflowFiles are patched in place with the deploy role and region.
	// Default: .github/workflows/build.yml, .github/workflows/deploy.yml
	WorkflowFiles []string `mapstructure:"workflow_files" yaml:"workflow_files"`
}

// ReportConfig controls where the run summary is archived.
type ReportConfig struct {
	// Enabled turns the report stage on.
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Bucket receiving the report object. When empty a name is derived
	// from the cluster name and account ID.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
}
