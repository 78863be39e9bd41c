package handlers

import (
	"context"
	"fmt"
	"log"
)

// Teardown handles the teardown command.
//
// It loads the cluster configuration and removes the stack in reverse
// provisioning order. A failing stage does not stop the walk; the
// remaining stages still run and every failure is reported together, so
// re-running continues the cleanup. The shared GitHub OIDC provider and
// the run-report bucket are never deleted.
func Teardown(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Tearing down cluster: %s (%s)", cfg.ClusterName, cfg.Region)

	infra, err := newInfraClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing AWS client: %w", err)
	}

	run, err := resolveRun(ctx, cfg, infra)
	if err != nil {
		return err
	}

	reconciler := newReconciler(infra, cfg, run)
	summary, err := reconciler.Teardown(ctx)
	printSummary(summary)
	if err != nil {
		return fmt.Errorf("teardown finished with failures: %w", err)
	}

	log.Printf("Cluster %s torn down", cfg.ClusterName)
	return nil
}
