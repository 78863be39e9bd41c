package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// clusterNamePattern follows the EKS naming rule: begins with a letter
// or digit, then letters, digits, hyphens, and underscores.
var clusterNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// regionPattern matches region identifiers such as eu-west-1 or
// il-central-1.
var regionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d$`)

// Validate checks the configuration for common errors and returns a
// detailed error naming the offending field.
func (c *Config) Validate() error {
	if c.ClusterName == "" {
		return fmt.Errorf("cluster_name is required")
	}
	if len(c.ClusterName) > 100 || !clusterNamePattern.MatchString(c.ClusterName) {
		return fmt.Errorf("invalid cluster_name %q: up to 100 letters, digits, hyphens, and underscores, starting with a letter or digit", c.ClusterName)
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if !regionPattern.MatchString(c.Region) {
		return fmt.Errorf("invalid region %q: expected an identifier like il-central-1", c.Region)
	}

	if err := c.validateNetwork(); err != nil {
		return fmt.Errorf("network validation failed: %w", err)
	}
	if err := c.validateSecurity(); err != nil {
		return fmt.Errorf("security validation failed: %w", err)
	}
	if err := c.validateCompute(); err != nil {
		return fmt.Errorf("compute validation failed: %w", err)
	}
	if err := c.validateGitHub(); err != nil {
		return fmt.Errorf("github validation failed: %w", err)
	}
	return nil
}

func (c *Config) validateNetwork() error {
	for _, f := range []struct{ name, cidr string }{
		{"vpc_cidr", c.Network.VPCCIDR},
		{"public_subnet_cidr", c.Network.PublicSubnetCIDR},
		{"private_subnet_cidr", c.Network.PrivateSubnetCIDR},
	} {
		if f.cidr == "" {
			continue
		}
		if _, _, err := net.ParseCIDR(f.cidr); err != nil {
			return fmt.Errorf("invalid %s %q: %w", f.name, f.cidr, err)
		}
	}

	// Two subnets, two zones.
	if n := len(c.Network.AvailabilityZones); n != 0 && n != 2 {
		return fmt.Errorf("availability_zones must list exactly 2 zones, got %d", n)
	}
	for _, zone := range c.Network.AvailabilityZones {
		if !strings.HasPrefix(zone, c.Region) {
			return fmt.Errorf("availability zone %q is not in region %q", zone, c.Region)
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	for i, rule := range c.Security.IngressRules {
		if rule.Protocol != "tcp" && rule.Protocol != "udp" {
			return fmt.Errorf("ingress rule %d has invalid protocol %q: must be tcp or udp", i, rule.Protocol)
		}
		if rule.Port < 1 || rule.Port > 65535 {
			return fmt.Errorf("ingress rule %d has invalid port %d: must be 1-65535", i, rule.Port)
		}
		if _, _, err := net.ParseCIDR(rule.CIDR); err != nil {
			return fmt.Errorf("ingress rule %d has invalid cidr %q: %w", i, rule.CIDR, err)
		}
	}
	return nil
}

func (c *Config) validateCompute() error {
	if c.Compute.MinSize < 1 {
		return fmt.Errorf("min_size must be at least 1, got %d", c.Compute.MinSize)
	}
	if c.Compute.MaxSize > 1000 {
		return fmt.Errorf("max_size must be at most 1000, got %d", c.Compute.MaxSize)
	}
	if c.Compute.DesiredSize < c.Compute.MinSize || c.Compute.DesiredSize > c.Compute.MaxSize {
		return fmt.Errorf("desired_size %d must be between min_size %d and max_size %d",
			c.Compute.DesiredSize, c.Compute.MinSize, c.Compute.MaxSize)
	}
	return nil
}

// validateGitHub checks shape only. Organization and repository may stay
// empty here; they are discovered from the origin remote at run time and
// required once the identity stages need them.
func (c *Config) validateGitHub() error {
	for _, f := range []struct{ name, value string }{
		{"organization", c.GitHub.Organization},
		{"repository", c.GitHub.Repository},
	} {
		if strings.ContainsAny(f.value, " /") {
			return fmt.Errorf("invalid %s %q: must not contain spaces or slashes", f.name, f.value)
		}
	}
	if c.GitHub.Branch == "" {
		return fmt.Errorf("branch is required")
	}
	for _, wf := range c.GitHub.WorkflowFiles {
		if strings.TrimSpace(wf) == "" {
			return fmt.Errorf("workflow_files must not contain empty entries")
		}
	}
	return nil
}
