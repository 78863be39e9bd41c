package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the wizard.
type WizardResult struct {
	ClusterName  string
	Region       string
	InstanceType string
	Addons       []string
	Organization string
	Repository   string
	Branch       string
	Report       bool
}

// RunWizard runs the interactive configuration wizard. The organization
// and repository inputs are prefilled from the origin remote when one is
// discoverable.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		// Defaults
		Region:       "eu-west-1",
		InstanceType: DefaultInstanceType,
		Addons:       append([]string(nil), DefaultAddons...),
		Branch:       DefaultBranch,
	}

	if repo, err := DiscoverRepository(ctx); err == nil {
		result.Organization = repo.Organization
		result.Repository = repo.Name
	}

	// Build the form
	form := huh.NewForm(
		// Cluster identity
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster name").
				Description("A unique name for your cluster (letters, digits, hyphens)").
				Placeholder("my-cluster").
				Value(&result.ClusterName).
				Validate(validateWizardClusterName),

			huh.NewInput().
				Title("Region").
				Description("AWS region to provision into").
				Placeholder("il-central-1").
				Value(&result.Region).
				Validate(validateWizardRegion),
		),

		// Compute
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Node instance type").
				Description("Worker nodes run your application workloads").
				Options(
					huh.NewOption("t3.medium - 2 vCPU, 4GB RAM", "t3.medium"),
					huh.NewOption("t3.large - 2 vCPU, 8GB RAM", "t3.large"),
					huh.NewOption("m5.large - 2 vCPU, 8GB RAM", "m5.large"),
					huh.NewOption("m5.xlarge - 4 vCPU, 16GB RAM", "m5.xlarge"),
					huh.NewOption("c5.large - 2 vCPU, 4GB RAM", "c5.large"),
				).
				Value(&result.InstanceType),

			huh.NewMultiSelect[string]().
				Title("Managed add-ons").
				Description("Reconciled once the cluster is up").
				Options(
					huh.NewOption("vpc-cni", "vpc-cni").Selected(true),
					huh.NewOption("coredns", "coredns").Selected(true),
					huh.NewOption("kube-proxy", "kube-proxy").Selected(true),
					huh.NewOption("aws-ebs-csi-driver", "aws-ebs-csi-driver"),
					huh.NewOption("eks-pod-identity-agent", "eks-pod-identity-agent"),
				).
				Value(&result.Addons),
		),

		// Deploy repository
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub organization").
				Description("Owner of the repository that deploys to this cluster").
				Placeholder("acme").
				Value(&result.Organization),

			huh.NewInput().
				Title("GitHub repository").
				Placeholder("web").
				Value(&result.Repository),

			huh.NewInput().
				Title("Deploy branch").
				Description("Branch allowed to assume the deploy role").
				Value(&result.Branch),
		),

		// Report archive
		huh.NewGroup(
			huh.NewConfirm().
				Title("Archive run reports to S3?").
				Description("Stores a JSON summary of every run in a reports bucket").
				Value(&result.Report),
		),
	)

	// Run the form
	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard result to a fully resolved Config.
// Populates all fields so the output YAML is explicit and self-documenting.
func (r *WizardResult) ToConfig() (*Config, error) {
	cfg := &Config{
		ClusterName: r.ClusterName,
		Region:      r.Region,
		Compute:     ComputeConfig{InstanceType: r.InstanceType},
		Addons:      AddonsConfig{Names: r.Addons},
		GitHub: GitHubConfig{
			Organization: r.Organization,
			Repository:   r.Repository,
			Branch:       r.Branch,
		},
		Report: ReportConfig{Enabled: r.Report},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateWizardClusterName validates the cluster name as typed.
func validateWizardClusterName(s string) error {
	if s == "" {
		return fmt.Errorf("cluster name is required")
	}
	if len(s) > 100 {
		return fmt.Errorf("cluster name must be 100 characters or less")
	}
	if !clusterNamePattern.MatchString(s) {
		return fmt.Errorf("cluster name can only contain letters, digits, hyphens, and underscores")
	}
	return nil
}

func validateWizardRegion(s string) error {
	if !regionPattern.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("expected a region identifier like il-central-1")
	}
	return nil
}
