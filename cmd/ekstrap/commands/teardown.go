package commands

import (
	"github.com/spf13/cobra"

	"github.com/ekstrap/ekstrap/cmd/ekstrap/handlers"
)

// Teardown returns the teardown command.
//
// The teardown command removes the stack in reverse provisioning order:
// access binding, deploy role, node group, cluster, registry, security
// boundary, subnets and network. The shared GitHub OIDC provider and the
// run-report bucket are reported but never deleted.
func Teardown() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Tear down the cluster stack",
		Long: `Tear down removes all stack resources from AWS.

Resources are deleted in reverse provisioning order so nothing is removed
while something later still depends on it. Two resources are deliberately
kept:

  - The GitHub OIDC identity provider (one per account, possibly shared
    with other clusters)
  - The run-report S3 bucket (it holds the audit trail, including the
    report of this teardown)

A failing deletion does not stop the walk; remaining stages still run and
all failures are reported together, so re-running continues where the
previous attempt got stuck. Tearing down an already-empty account succeeds
and reports every resource as absent.

Example:
  ekstrap teardown -c ekstrap.yaml

WARNING: This operation is irreversible. The cluster and its workloads
will be gone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Teardown(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ekstrap.yaml)")

	return cmd
}
