package aws

import (
	"context"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
)

// EnsureAccessBinding reconciles a cluster access grant: the access entry
// for the principal plus the associated access policy. The binding counts
// as present only when both halves exist; a half-bound entry (created, but
// policy association lost) is converged by re-running the create, which
// tolerates the existing entry.
func (c *RealClient) EnsureAccessBinding(ctx context.Context, spec AccessBindingSpec) (*AccessBinding, Outcome, error) {
	return (&EnsureOperation[AccessBinding]{
		Key:          spec.PrincipalARN,
		ResourceType: "access binding",
		Probe: func(ctx context.Context) (*AccessBinding, error) {
			binding, err := c.getAccessBinding(ctx, spec.ClusterName, spec.PrincipalARN)
			if err != nil || binding == nil {
				return nil, err
			}
			if !slices.Contains(binding.PolicyARNs, spec.PolicyARN) {
				return nil, nil
			}
			return binding, nil
		},
		Create: func(ctx context.Context) (*AccessBinding, error) { return c.createAccessBinding(ctx, spec) },
	}).Execute(ctx)
}

func (c *RealClient) getAccessBinding(ctx context.Context, clusterName, principalARN string) (*AccessBinding, error) {
	_, err := c.eks.DescribeAccessEntry(ctx, &eks.DescribeAccessEntryInput{
		ClusterName:  aws.String(clusterName),
		PrincipalArn: aws.String(principalARN),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	binding := &AccessBinding{PrincipalARN: principalARN}
	input := &eks.ListAssociatedAccessPoliciesInput{
		ClusterName:  aws.String(clusterName),
		PrincipalArn: aws.String(principalARN),
	}
	for {
		out, err := c.eks.ListAssociatedAccessPolicies(ctx, input)
		if err != nil {
			if IsNotFound(err) {
				return binding, nil
			}
			return nil, err
		}
		for _, policy := range out.AssociatedAccessPolicies {
			binding.PolicyARNs = append(binding.PolicyARNs, aws.ToString(policy.PolicyArn))
		}
		if out.NextToken == nil {
			return binding, nil
		}
		input.NextToken = out.NextToken
	}
}

func (c *RealClient) createAccessBinding(ctx context.Context, spec AccessBindingSpec) (*AccessBinding, error) {
	_, err := c.eks.CreateAccessEntry(ctx, &eks.CreateAccessEntryInput{
		ClusterName:  aws.String(spec.ClusterName),
		PrincipalArn: aws.String(spec.PrincipalARN),
	})
	if err != nil && !IsAlreadyExists(err) {
		return nil, err
	}

	// Associating is an upsert on the provider side.
	_, err = c.eks.AssociateAccessPolicy(ctx, &eks.AssociateAccessPolicyInput{
		ClusterName:  aws.String(spec.ClusterName),
		PrincipalArn: aws.String(spec.PrincipalARN),
		PolicyArn:    aws.String(spec.PolicyARN),
		AccessScope:  &ekstypes.AccessScope{Type: ekstypes.AccessScopeTypeCluster},
	})
	if err != nil {
		return nil, err
	}

	return &AccessBinding{PrincipalARN: spec.PrincipalARN, PolicyARNs: []string{spec.PolicyARN}}, nil
}

// DeleteAccessBinding removes the access entry; associations go with it.
func (c *RealClient) DeleteAccessBinding(ctx context.Context, clusterName, principalARN string) (Outcome, error) {
	return (&DeleteOperation[AccessBinding]{
		Key:          principalARN,
		ResourceType: "access binding",
		Probe: func(ctx context.Context) (*AccessBinding, error) {
			return c.getAccessBinding(ctx, clusterName, principalARN)
		},
		Delete: func(ctx context.Context, existing *AccessBinding) error {
			_, err := c.eks.DeleteAccessEntry(ctx, &eks.DeleteAccessEntryInput{
				ClusterName:  aws.String(clusterName),
				PrincipalArn: aws.String(existing.PrincipalARN),
			})
			return err
		},
	}).Execute(ctx)
}
