package aws

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
)

func toECRTags(tags map[string]string) []ecrtypes.Tag {
	out := make([]ecrtypes.Tag, 0, len(tags))
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		out = append(out, ecrtypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

// EnsureRegistry reconciles the container registry.
func (c *RealClient) EnsureRegistry(ctx context.Context, spec RegistrySpec) (*Registry, Outcome, error) {
	return (&EnsureOperation[Registry]{
		Key:          spec.Name,
		ResourceType: "registry",
		Probe:        func(ctx context.Context) (*Registry, error) { return c.getRegistry(ctx, spec.Name) },
		Create:       func(ctx context.Context) (*Registry, error) { return c.createRegistry(ctx, spec) },
	}).Execute(ctx)
}

func (c *RealClient) getRegistry(ctx context.Context, name string) (*Registry, error) {
	out, err := c.ecr.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{name},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(out.Repositories) == 0 {
		return nil, nil
	}
	if len(out.Repositories) > 1 {
		return nil, fmt.Errorf("%d repositories match name %q", len(out.Repositories), name)
	}
	repo := out.Repositories[0]
	return &Registry{
		ARN:  aws.ToString(repo.RepositoryArn),
		Name: aws.ToString(repo.RepositoryName),
		URI:  aws.ToString(repo.RepositoryUri),
	}, nil
}

func (c *RealClient) createRegistry(ctx context.Context, spec RegistrySpec) (*Registry, error) {
	out, err := c.ecr.CreateRepository(ctx, &ecr.CreateRepositoryInput{
		RepositoryName: aws.String(spec.Name),
		ImageScanningConfiguration: &ecrtypes.ImageScanningConfiguration{
			ScanOnPush: spec.ScanOnPush,
		},
		Tags: toECRTags(spec.Tags),
	})
	if err != nil {
		return nil, err
	}
	return &Registry{
		ARN:  aws.ToString(out.Repository.RepositoryArn),
		Name: aws.ToString(out.Repository.RepositoryName),
		URI:  aws.ToString(out.Repository.RepositoryUri),
	}, nil
}

// DeleteRegistry force-deletes the repository including stored images.
func (c *RealClient) DeleteRegistry(ctx context.Context, name string) (Outcome, error) {
	return (&DeleteOperation[Registry]{
		Key:          name,
		ResourceType: "registry",
		Probe:        func(ctx context.Context) (*Registry, error) { return c.getRegistry(ctx, name) },
		Delete: func(ctx context.Context, existing *Registry) error {
			_, err := c.ecr.DeleteRepository(ctx, &ecr.DeleteRepositoryInput{
				RepositoryName: aws.String(existing.Name),
				Force:          true,
			})
			return err
		},
	}).Execute(ctx)
}
