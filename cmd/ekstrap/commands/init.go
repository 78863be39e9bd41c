package commands

import (
	"github.com/spf13/cobra"

	"github.com/ekstrap/ekstrap/cmd/ekstrap/handlers"
)

// Init returns the command for interactively creating a configuration.
//
// This command guides users through creating an ekstrap.yaml using an
// interactive wizard. The GitHub organization and repository are prefilled
// from the origin remote of the current clone when one exists.
//
// Flags:
//
//	--output, -o: Path to output file (default "ekstrap.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a cluster configuration",
		Long: `Interactively create a cluster configuration file.

This command walks you through the handful of choices ekstrap needs:

  - Cluster name and AWS region
  - Node instance type
  - Managed add-ons to install
  - GitHub repository allowed to deploy (prefilled from the origin remote)
  - Whether to archive run reports to S3

Everything else uses defaults you can edit in the generated file
afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "ekstrap.yaml", "Output file path")

	return cmd
}
