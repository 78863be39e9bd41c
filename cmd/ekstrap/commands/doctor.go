package commands

import (
	"github.com/spf13/cobra"

	"github.com/ekstrap/ekstrap/cmd/ekstrap/handlers"
)

// Doctor returns the doctor command.
//
// Doctor runs the environment preflight: configuration lint, AWS
// credential resolution, repository discovery and optional client tools.
// It makes no changes.
func Doctor() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment before provisioning",
		Long: `Check that the environment is ready for 'ekstrap provision'.

The checks:

  - Configuration file loads and validates
  - AWS credentials resolve (STS GetCallerIdentity)
  - GitHub repository is configured or discoverable from the origin remote
  - aws and kubectl binaries on PATH (only needed to use the cluster
    afterwards, reported as warnings when missing)

Nothing is created or modified.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ekstrap.yaml)")

	return cmd
}
