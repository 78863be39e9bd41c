package config

import (
	"fmt"

	"github.com/ekstrap/ekstrap/internal/util/netutil"
)

// Defaults applied to fields left unset in ekstrap.yaml.
const (
	DefaultVPCCIDR        = "10.0.0.0/16"
	DefaultInstanceType   = "t3.medium"
	DefaultDesiredSize    = 2
	DefaultMinSize        = 1
	DefaultMaxSize        = 3
	DefaultAddonParallel  = 3
	DefaultBranch         = "main"
	DefaultKubeconfigPath = "kubeconfig"

	// Derived subnets are /20 blocks carved from the VPC CIDR.
	subnetPrefixLen = 20
)

// DefaultAddons are the managed add-ons reconciled when addons.names is
// not configured.
var DefaultAddons = []string{"vpc-cni", "coredns", "kube-proxy"}

// DefaultWorkflowFiles are the workflow definitions patched when
// github.workflow_files is not configured.
var DefaultWorkflowFiles = []string{
	".github/workflows/build.yml",
	".github/workflows/deploy.yml",
}

// DefaultIngressRules allow HTTPS from anywhere.
var DefaultIngressRules = []IngressRule{
	{Protocol: "tcp", Port: 443, CIDR: "0.0.0.0/0"},
}

// ApplyDefaults fills every unset field with its default. Subnet CIDRs
// are derived from the VPC block, so a malformed vpc_cidr surfaces here
// rather than in Validate. Availability zones are derived only once the
// region is known.
func (c *Config) ApplyDefaults() error {
	if c.Network.VPCCIDR == "" {
		c.Network.VPCCIDR = DefaultVPCCIDR
	}
	if c.Network.PublicSubnetCIDR == "" {
		cidr, err := netutil.SplitCIDR(c.Network.VPCCIDR, subnetPrefixLen, 0)
		if err != nil {
			return fmt.Errorf("deriving public subnet from %q: %w", c.Network.VPCCIDR, err)
		}
		c.Network.PublicSubnetCIDR = cidr
	}
	if c.Network.PrivateSubnetCIDR == "" {
		cidr, err := netutil.SplitCIDR(c.Network.VPCCIDR, subnetPrefixLen, 1)
		if err != nil {
			return fmt.Errorf("deriving private subnet from %q: %w", c.Network.VPCCIDR, err)
		}
		c.Network.PrivateSubnetCIDR = cidr
	}
	if len(c.Network.AvailabilityZones) == 0 && c.Region != "" {
		c.Network.AvailabilityZones = []string{c.Region + "a", c.Region + "b"}
	}

	if len(c.Security.IngressRules) == 0 {
		c.Security.IngressRules = append([]IngressRule(nil), DefaultIngressRules...)
	}

	if c.Compute.InstanceType == "" {
		c.Compute.InstanceType = DefaultInstanceType
	}
	if c.Compute.DesiredSize == 0 {
		c.Compute.DesiredSize = DefaultDesiredSize
	}
	if c.Compute.MinSize == 0 {
		c.Compute.MinSize = DefaultMinSize
	}
	if c.Compute.MaxSize == 0 {
		c.Compute.MaxSize = DefaultMaxSize
	}

	if len(c.Addons.Names) == 0 {
		c.Addons.Names = append([]string(nil), DefaultAddons...)
	}
	if c.Addons.Concurrency == 0 {
		c.Addons.Concurrency = DefaultAddonParallel
	}

	if c.GitHub.Branch == "" {
		c.GitHub.Branch = DefaultBranch
	}
	if len(c.GitHub.WorkflowFiles) == 0 {
		c.GitHub.WorkflowFiles = append([]string(nil), DefaultWorkflowFiles...)
	}

	if c.KubeconfigPath == "" {
		c.KubeconfigPath = DefaultKubeconfigPath
	}
	return nil
}
