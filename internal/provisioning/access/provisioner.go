package access

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ekstrap/ekstrap/internal/k8s"
	"github.com/ekstrap/ekstrap/internal/kubeconfig"
	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
)

// Provisioner writes the kubeconfig and confirms node readiness.
type Provisioner struct {
	// NewClient builds a Kubernetes client from kubeconfig bytes. Tests
	// swap in a fake clientset.
	NewClient func(kubeconfigData []byte) (*k8s.Client, error)
}

// NewProvisioner creates a new access provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{NewClient: k8s.NewClientFromKubeconfig}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "access"
}

// Provision writes the cluster's kubeconfig entry, merging over any existing
// file, then waits for the configured number of nodes to report Ready.
// Unreachable or slow nodes degrade to a warning: the stack is converged
// even when the operator's network cannot see the API server yet.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.Cluster == nil {
		return errors.New("cluster phase has not run")
	}

	cluster := ctx.Config.ClusterName
	contextName := naming.KubeContext(cluster, ctx.Config.Region)
	path := p.kubeconfigPath(ctx)

	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "kubeconfig", path)
	kc, err := kubeconfig.Build(ctx.State.Cluster, ctx.Config.Region, contextName)
	if err != nil {
		return err
	}
	raw, err := kubeconfig.Bytes(kc)
	if err != nil {
		return err
	}

	before, readErr := os.ReadFile(path)
	if err := kubeconfig.WriteFile(kc, path); err != nil {
		return err
	}

	outcome := aws.OutcomeCreated
	if readErr == nil {
		after, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading back kubeconfig %s: %w", path, err)
		}
		if bytes.Equal(before, after) {
			outcome = aws.OutcomePresent
		} else {
			outcome = aws.OutcomeRepaired
		}
	}

	ctx.State.Kubeconfig = raw
	ctx.State.KubeContext = contextName
	ctx.Record(p.Name(), "kubeconfig", path, outcome, contextName)

	return p.waitForNodes(ctx, raw)
}

func (p *Provisioner) waitForNodes(ctx *provisioning.Context, raw []byte) error {
	cluster := ctx.Config.ClusterName
	desired := ctx.Config.Compute.DesiredSize

	client, err := p.NewClient(raw)
	if err != nil {
		ctx.Warn(p.Name(), "nodes", naming.NodeGroup(cluster), fmt.Errorf("connecting to cluster: %w", err))
		return nil
	}

	ctx.Observer.Printf("waiting for %d nodes to be ready", desired)
	if err := client.WaitForNodesReady(ctx, desired, ctx.Timeouts.NodeReady); err != nil {
		ctx.Warn(p.Name(), "nodes", naming.NodeGroup(cluster), fmt.Errorf("waiting for nodes: %w", err))
		return nil
	}
	ctx.Observer.Printf("all %d nodes ready", desired)

	return nil
}

// Teardown removes the cluster's entries from the kubeconfig. Entries for
// other clusters survive.
func (p *Provisioner) Teardown(ctx *provisioning.Context) error {
	contextName := naming.KubeContext(ctx.Config.ClusterName, ctx.Config.Region)
	path := p.kubeconfigPath(ctx)

	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "kubeconfig", contextName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		ctx.Record(p.Name(), "kubeconfig", contextName, aws.OutcomeAbsent, "")
		return nil
	}
	if err := kubeconfig.RemoveContext(path, contextName); err != nil {
		return err
	}
	ctx.Record(p.Name(), "kubeconfig", contextName, aws.OutcomeDeleted, "")

	return nil
}

func (p *Provisioner) kubeconfigPath(ctx *provisioning.Context) string {
	if ctx.Config.KubeconfigPath != "" {
		return ctx.Config.KubeconfigPath
	}
	return kubeconfig.DefaultPath
}
