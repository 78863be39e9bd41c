package commands

import (
	"github.com/spf13/cobra"

	"github.com/ekstrap/ekstrap/cmd/ekstrap/handlers"
)

// Provision returns the command for creating or repairing the cluster stack.
//
// The command walks the fixed stage order (network through report) and
// converges each resource: present resources are left alone, missing ones
// are created, drifted add-ons are updated. It is safe to re-run after a
// partial failure.
//
// Optional flags:
//
//	--config, -c: Path to cluster configuration YAML file (default: ekstrap.yaml)
//
// Credentials come from the ambient AWS credential chain (environment,
// shared config, instance metadata).
func Provision() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create or repair the cluster stack",
		Long: `Create or repair your EKS cluster stack.

This command provisions the VPC, subnets, security boundary, container
registry, EKS control plane, node group and managed add-ons, writes a
kubeconfig entry, and wires the GitHub Actions deploy role into your
workflow files.

Every stage probes first and only creates what is missing, so the command
can be re-run at any time: after a quota failure, after editing the
configuration, or just to verify the stack.

If no config file is specified, it looks for ekstrap.yaml in the current
directory. Use 'ekstrap init' to create a configuration file.

Examples:
  # Converge the stack described by ekstrap.yaml
  ekstrap provision

  # Use a specific config file
  ekstrap provision -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ekstrap.yaml)")

	return cmd
}
