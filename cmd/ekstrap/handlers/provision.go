// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework; external constructors
// are declared as function variables so tests can swap them out.
package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/ekstrap/ekstrap/internal/config"
	"github.com/ekstrap/ekstrap/internal/orchestration"
	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
)

// Reconciler interface for testing - matches orchestration.Reconciler.
type Reconciler interface {
	Provision(ctx context.Context) (*provisioning.Summary, error)
	Teardown(ctx context.Context) (*provisioning.Summary, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newInfraClient creates an AWS-backed infrastructure client using the
	// ambient credential chain.
	newInfraClient = func(ctx context.Context, cfg *config.Config) (aws.InfrastructureManager, error) {
		client, err := aws.NewClient(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		return client.WithTimeouts(waiterTimeouts()), nil
	}

	// newReconciler creates the phase sequencer.
	newReconciler = func(infra aws.InfrastructureManager, cfg *config.Config, run *provisioning.RunContext) Reconciler {
		return orchestration.NewReconciler(infra, cfg, run)
	}

	// resolveRun discovers the account ID and repository coordinates.
	resolveRun = provisioning.ResolveRun

	// loadConfigFile loads config from file (for testing injection).
	loadConfigFile = config.LoadFile
)

// Provision converges the whole stack toward the configured state.
//
// It loads the configuration, resolves the caller's AWS account and the
// GitHub repository coordinates, then runs the fixed stage sequence. Each
// stage probes before it creates, so a re-run after a partial failure
// picks up where the previous run stopped.
//
// Degraded add-ons do not fail the run; they surface as warnings in the
// final summary. The exit status is non-zero only for fatal errors.
func Provision(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Provisioning cluster: %s (%s)", cfg.ClusterName, cfg.Region)

	infra, err := newInfraClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing AWS client: %w", err)
	}

	run, err := resolveRun(ctx, cfg, infra)
	if err != nil {
		return err
	}

	reconciler := newReconciler(infra, cfg, run)
	summary, err := reconciler.Provision(ctx)
	printSummary(summary)
	if err != nil {
		return fmt.Errorf("provisioning failed: %w", err)
	}

	printAccessHint(cfg)
	return nil
}

// loadConfig reads and validates the configuration. If configPath is
// empty, it looks for ekstrap.yaml in the current directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w\nRun 'ekstrap init' to create a configuration", configPath, err)
	}
	return cfg, nil
}

// waiterTimeouts maps the environment-tunable timeout configuration onto
// the provider client's waiter bounds.
func waiterTimeouts() aws.Timeouts {
	t := config.LoadTimeouts()
	return aws.Timeouts{
		ClusterCreate:   t.ClusterCreate,
		ClusterDelete:   t.ClusterDelete,
		NodeGroupCreate: t.NodeGroupCreate,
		NodeGroupDelete: t.NodeGroupDelete,
		Addon:           t.Addon,
		Delete:          t.Delete,
	}
}

// printAccessHint tells the user how to reach the cluster once a
// provision run succeeded.
func printAccessHint(cfg *config.Config) {
	path := cfg.KubeconfigPath
	if path == "" {
		path = "kubeconfig"
	}
	fmt.Printf("\nYou can now access your cluster with:\n")
	fmt.Printf("  export KUBECONFIG=%s\n", path)
	fmt.Printf("  kubectl get nodes\n")
}
