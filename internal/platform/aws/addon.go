package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
)

// Add-on lifecycle primitives. The health state machine owns the decision
// logic; these only talk to the provider.

// GetAddon probes one add-on, nil when not installed.
func (c *RealClient) GetAddon(ctx context.Context, clusterName, name string) (*Addon, error) {
	out, err := c.eks.DescribeAddon(ctx, &eks.DescribeAddonInput{
		ClusterName: aws.String(clusterName),
		AddonName:   aws.String(name),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return addonDescriptor(out.Addon), nil
}

func addonDescriptor(addon *ekstypes.Addon) *Addon {
	return &Addon{
		Name:    aws.ToString(addon.AddonName),
		Status:  string(addon.Status),
		Version: aws.ToString(addon.AddonVersion),
	}
}

// ListAddons returns the names of every installed add-on.
func (c *RealClient) ListAddons(ctx context.Context, clusterName string) ([]string, error) {
	var names []string
	input := &eks.ListAddonsInput{ClusterName: aws.String(clusterName)}
	for {
		out, err := c.eks.ListAddons(ctx, input)
		if err != nil {
			if IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		names = append(names, out.Addons...)
		if out.NextToken == nil {
			return names, nil
		}
		input.NextToken = out.NextToken
	}
}

// CreateAddon installs an add-on. Conflicting self-managed manifests are
// overwritten; the managed add-on is the source of truth.
func (c *RealClient) CreateAddon(ctx context.Context, spec AddonSpec) error {
	input := &eks.CreateAddonInput{
		ClusterName:      aws.String(spec.ClusterName),
		AddonName:        aws.String(spec.Name),
		ResolveConflicts: ekstypes.ResolveConflictsOverwrite,
	}
	if spec.Version != "" {
		input.AddonVersion = aws.String(spec.Version)
	}
	_, err := c.eks.CreateAddon(ctx, input)
	return err
}

// UpdateAddon converges an installed add-on in place.
func (c *RealClient) UpdateAddon(ctx context.Context, spec AddonSpec) error {
	input := &eks.UpdateAddonInput{
		ClusterName:      aws.String(spec.ClusterName),
		AddonName:        aws.String(spec.Name),
		ResolveConflicts: ekstypes.ResolveConflictsOverwrite,
	}
	if spec.Version != "" {
		input.AddonVersion = aws.String(spec.Version)
	}
	_, err := c.eks.UpdateAddon(ctx, input)
	return err
}

// DeleteAddon removes an add-on.
func (c *RealClient) DeleteAddon(ctx context.Context, clusterName, name string) error {
	_, err := c.eks.DeleteAddon(ctx, &eks.DeleteAddonInput{
		ClusterName: aws.String(clusterName),
		AddonName:   aws.String(name),
	})
	if err != nil && IsNotFound(err) {
		return nil
	}
	return err
}

// WaitAddonActive blocks until the add-on settles, then re-probes it.
func (c *RealClient) WaitAddonActive(ctx context.Context, clusterName, name string) (*Addon, error) {
	waiter := eks.NewAddonActiveWaiter(c.eks)
	input := &eks.DescribeAddonInput{
		ClusterName: aws.String(clusterName),
		AddonName:   aws.String(name),
	}
	if err := waiter.Wait(ctx, input, c.timeouts.Addon); err != nil {
		return nil, err
	}
	return c.GetAddon(ctx, clusterName, name)
}

// WaitAddonDeleted blocks until the add-on is gone.
func (c *RealClient) WaitAddonDeleted(ctx context.Context, clusterName, name string) error {
	waiter := eks.NewAddonDeletedWaiter(c.eks)
	return waiter.Wait(ctx, &eks.DescribeAddonInput{
		ClusterName: aws.String(clusterName),
		AddonName:   aws.String(name),
	}, c.timeouts.Addon)
}
