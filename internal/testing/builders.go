package testing

import "github.com/ekstrap/ekstrap/internal/config"

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining. The seed
// config is complete and valid, so tests only override what they assert on.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with sensible defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			ClusterName:       "acme-web",
			Region:            "il-central-1",
			KubernetesVersion: "1.32",
			Network: config.NetworkConfig{
				VPCCIDR:           "10.0.0.0/16",
				PublicSubnetCIDR:  "10.0.0.0/20",
				PrivateSubnetCIDR: "10.0.16.0/20",
				AvailabilityZones: []string{"il-central-1a", "il-central-1b"},
			},
			Security: config.SecurityConfig{
				IngressRules: []config.IngressRule{
					{Protocol: "tcp", Port: 443, CIDR: "0.0.0.0/0"},
				},
			},
			Compute: config.ComputeConfig{
				InstanceType: "t3.medium",
				DesiredSize:  2,
				MinSize:      1,
				MaxSize:      3,
			},
			Addons: config.AddonsConfig{
				Names:       []string{"vpc-cni", "coredns", "kube-proxy"},
				Concurrency: 2,
			},
			GitHub: config.GitHubConfig{
				Organization: "acme",
				Repository:   "web",
				Branch:       "main",
				WorkflowFiles: []string{
					".github/workflows/build.yml",
					".github/workflows/deploy.yml",
				},
			},
			KubeconfigPath: "kubeconfig",
		},
	}
}

// WithClusterName sets the cluster name.
func (b *ConfigBuilder) WithClusterName(name string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.ClusterName = name
	return nb
}

// WithRegion sets the region.
func (b *ConfigBuilder) WithRegion(region string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Region = region
	return nb
}

// WithKubernetesVersion sets the Kubernetes version.
func (b *ConfigBuilder) WithKubernetesVersion(version string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.KubernetesVersion = version
	return nb
}

// WithAddons replaces the add-on list.
func (b *ConfigBuilder) WithAddons(names ...string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Addons.Names = names
	return nb
}

// WithAddonConcurrency sets the add-on reconcile parallelism.
func (b *ConfigBuilder) WithAddonConcurrency(n int) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Addons.Concurrency = n
	return nb
}

// WithNodeCounts sets the node group sizing.
func (b *ConfigBuilder) WithNodeCounts(desired, minSize, maxSize int) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Compute.DesiredSize = desired
	nb.cfg.Compute.MinSize = minSize
	nb.cfg.Compute.MaxSize = maxSize
	return nb
}

// WithRepository sets the GitHub repository coordinates.
func (b *ConfigBuilder) WithRepository(organization, repository, branch string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.GitHub.Organization = organization
	nb.cfg.GitHub.Repository = repository
	nb.cfg.GitHub.Branch = branch
	return nb
}

// WithWorkflowFiles replaces the workflow file list.
func (b *ConfigBuilder) WithWorkflowFiles(files ...string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.GitHub.WorkflowFiles = files
	return nb
}

// WithReport enables report persistence to the given bucket. An empty
// bucket name means the derived default.
func (b *ConfigBuilder) WithReport(bucket string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Report.Enabled = true
	nb.cfg.Report.Bucket = bucket
	return nb
}

// WithKubeconfigPath sets where the access phase writes the kubeconfig.
func (b *ConfigBuilder) WithKubeconfigPath(path string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.KubeconfigPath = path
	return nb
}

// Build returns the accumulated configuration.
func (b *ConfigBuilder) Build() *config.Config {
	nb := b.clone()
	return &nb.cfg
}

// clone deep-copies the builder so shared slices never leak between tests.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	nb := &ConfigBuilder{cfg: b.cfg}
	nb.cfg.Network.AvailabilityZones = append([]string(nil), b.cfg.Network.AvailabilityZones...)
	nb.cfg.Security.IngressRules = append([]config.IngressRule(nil), b.cfg.Security.IngressRules...)
	nb.cfg.Addons.Names = append([]string(nil), b.cfg.Addons.Names...)
	nb.cfg.GitHub.WorkflowFiles = append([]string(nil), b.cfg.GitHub.WorkflowFiles...)
	return nb
}
