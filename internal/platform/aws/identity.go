package aws

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

func toIAMTags(tags map[string]string) []iamtypes.Tag {
	out := make([]iamtypes.Tag, 0, len(tags))
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		out = append(out, iamtypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

// EnsureOIDCProvider reconciles the identity provider. The provider is
// shared with other consumers in the account: teardown probes it but never
// deletes it.
func (c *RealClient) EnsureOIDCProvider(ctx context.Context, spec OIDCProviderSpec) (*OIDCProvider, Outcome, error) {
	return (&EnsureOperation[OIDCProvider]{
		Key:          spec.URL,
		ResourceType: "identity provider",
		Probe:        func(ctx context.Context) (*OIDCProvider, error) { return c.GetOIDCProvider(ctx, spec.URL) },
		Create:       func(ctx context.Context) (*OIDCProvider, error) { return c.createOIDCProvider(ctx, spec) },
	}).Execute(ctx)
}

// GetOIDCProvider probes by issuer URL, nil when absent. Provider ARNs
// embed the issuer host, so the list can be matched without describing
// every entry.
func (c *RealClient) GetOIDCProvider(ctx context.Context, url string) (*OIDCProvider, error) {
	out, err := c.iam.ListOpenIDConnectProviders(ctx, &iam.ListOpenIDConnectProvidersInput{})
	if err != nil {
		return nil, err
	}

	host := strings.TrimPrefix(url, "https://")
	for _, provider := range out.OpenIDConnectProviderList {
		arn := aws.ToString(provider.Arn)
		if strings.HasSuffix(arn, "/"+host) {
			return &OIDCProvider{ARN: arn, URL: url}, nil
		}
	}
	return nil, nil
}

func (c *RealClient) createOIDCProvider(ctx context.Context, spec OIDCProviderSpec) (*OIDCProvider, error) {
	url := spec.URL
	if !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	out, err := c.iam.CreateOpenIDConnectProvider(ctx, &iam.CreateOpenIDConnectProviderInput{
		Url:            aws.String(url),
		ClientIDList:   spec.ClientIDs,
		ThumbprintList: spec.Thumbprints,
		Tags:           toIAMTags(spec.Tags),
	})
	if err != nil {
		return nil, err
	}
	return &OIDCProvider{ARN: aws.ToString(out.OpenIDConnectProviderArn), URL: spec.URL}, nil
}

// EnsureRole reconciles a role together with its managed sub-resources
// (inline policies, attachments). An existing role is left as found.
func (c *RealClient) EnsureRole(ctx context.Context, spec RoleSpec) (*Role, Outcome, error) {
	return (&EnsureOperation[Role]{
		Key:          spec.Name,
		ResourceType: "role",
		Probe:        func(ctx context.Context) (*Role, error) { return c.getRole(ctx, spec.Name) },
		Create:       func(ctx context.Context) (*Role, error) { return c.createRole(ctx, spec) },
	}).Execute(ctx)
}

func (c *RealClient) getRole(ctx context.Context, name string) (*Role, error) {
	out, err := c.iam.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &Role{
		ARN:  aws.ToString(out.Role.Arn),
		Name: aws.ToString(out.Role.RoleName),
	}, nil
}

func (c *RealClient) createRole(ctx context.Context, spec RoleSpec) (*Role, error) {
	input := &iam.CreateRoleInput{
		RoleName:                 aws.String(spec.Name),
		AssumeRolePolicyDocument: aws.String(spec.TrustPolicy),
		Tags:                     toIAMTags(spec.Tags),
	}
	if spec.Description != "" {
		input.Description = aws.String(spec.Description)
	}
	out, err := c.iam.CreateRole(ctx, input)
	if err != nil {
		return nil, err
	}

	for _, name := range slices.Sorted(maps.Keys(spec.InlinePolicies)) {
		_, err := c.iam.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
			RoleName:       aws.String(spec.Name),
			PolicyName:     aws.String(name),
			PolicyDocument: aws.String(spec.InlinePolicies[name]),
		})
		if err != nil {
			return nil, fmt.Errorf("putting inline policy %s: %w", name, err)
		}
	}

	for _, policyARN := range spec.AttachedPolicyARNs {
		_, err := c.iam.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
			RoleName:  aws.String(spec.Name),
			PolicyArn: aws.String(policyARN),
		})
		if err != nil {
			return nil, fmt.Errorf("attaching policy %s: %w", policyARN, err)
		}
	}

	return &Role{ARN: aws.ToString(out.Role.Arn), Name: spec.Name}, nil
}

// DeleteRolePolicies removes the role's inline policies and detaches its
// managed policies. IAM rejects role deletion while either remains, so
// this must run before DeleteRole.
func (c *RealClient) DeleteRolePolicies(ctx context.Context, roleName string) (Outcome, error) {
	return (&DeleteOperation[Role]{
		Key:          roleName,
		ResourceType: "role policies",
		Probe:        func(ctx context.Context) (*Role, error) { return c.getRole(ctx, roleName) },
		Delete:       func(ctx context.Context, existing *Role) error { return c.stripRolePolicies(ctx, existing.Name) },
	}).Execute(ctx)
}

func (c *RealClient) stripRolePolicies(ctx context.Context, roleName string) error {
	inline := &iam.ListRolePoliciesInput{RoleName: aws.String(roleName)}
	for {
		out, err := c.iam.ListRolePolicies(ctx, inline)
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			return err
		}
		for _, name := range out.PolicyNames {
			_, err := c.iam.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
				RoleName:   aws.String(roleName),
				PolicyName: aws.String(name),
			})
			if err != nil && !IsNotFound(err) {
				return fmt.Errorf("deleting inline policy %s: %w", name, err)
			}
		}
		if !out.IsTruncated {
			break
		}
		inline.Marker = out.Marker
	}

	attached := &iam.ListAttachedRolePoliciesInput{RoleName: aws.String(roleName)}
	for {
		out, err := c.iam.ListAttachedRolePolicies(ctx, attached)
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			return err
		}
		for _, policy := range out.AttachedPolicies {
			_, err := c.iam.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
				RoleName:  aws.String(roleName),
				PolicyArn: policy.PolicyArn,
			})
			if err != nil && !IsNotFound(err) {
				return fmt.Errorf("detaching policy %s: %w", aws.ToString(policy.PolicyArn), err)
			}
		}
		if !out.IsTruncated {
			break
		}
		attached.Marker = out.Marker
	}
	return nil
}

// DeleteRole removes the role itself.
func (c *RealClient) DeleteRole(ctx context.Context, roleName string) (Outcome, error) {
	return (&DeleteOperation[Role]{
		Key:          roleName,
		ResourceType: "role",
		Probe:        func(ctx context.Context) (*Role, error) { return c.getRole(ctx, roleName) },
		Delete: func(ctx context.Context, existing *Role) error {
			_, err := c.iam.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: aws.String(existing.Name)})
			return err
		},
	}).Execute(ctx)
}
