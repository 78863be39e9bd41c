package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ekstrap/ekstrap/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive wizard.
	runWizard = config.RunWizard

	// writeConfig writes the config to a file.
	writeConfig = config.Save
)

// Init runs the configuration wizard and writes the result to a file.
// The wizard needs an interactive terminal; in pipes and CI the command
// refuses to run instead of hanging on a form nobody can answer.
func Init(ctx context.Context, outputPath string) error {
	if !stdoutIsTTY() {
		return errors.New("init needs an interactive terminal; write ekstrap.yaml by hand or run in a TTY")
	}

	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg, err := result.ToConfig()
	if err != nil {
		return fmt.Errorf("building configuration: %w", err)
	}

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("ekstrap - GitHub-deployable EKS")
	fmt.Println("===============================")
	fmt.Println()
	fmt.Println("This wizard creates a cluster configuration with sensible defaults.")
	fmt.Println("Everything it writes can be edited in the generated YAML afterwards.")
	fmt.Println()
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Cluster Summary")
	fmt.Println("---------------")
	fmt.Printf("  Name:       %s\n", cfg.ClusterName)
	fmt.Printf("  Region:     %s\n", cfg.Region)
	fmt.Printf("  Kubernetes: %s\n", cfg.KubernetesVersion)
	fmt.Printf("  Nodes:      %d x %s\n", cfg.Compute.DesiredSize, cfg.Compute.InstanceType)
	fmt.Printf("  Add-ons:    %s\n", strings.Join(cfg.Addons.Names, ", "))
	if cfg.GitHub.Organization != "" && cfg.GitHub.Repository != "" {
		fmt.Printf("  Deploys:    %s/%s (branch %s)\n", cfg.GitHub.Organization, cfg.GitHub.Repository, cfg.GitHub.Branch)
	}
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Make sure AWS credentials are available:")
	fmt.Println("     aws sts get-caller-identity")
	fmt.Println()
	fmt.Printf("  2. Review %s if needed\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Create the stack:")
	fmt.Println("     ekstrap provision")
	fmt.Println()
}
