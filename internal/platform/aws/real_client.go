package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Timeouts bounds the blocking waiters. A long convergence (cluster
// creation) is expected to block until the provider settles; these only cap
// how long.
type Timeouts struct {
	ClusterCreate   time.Duration
	ClusterDelete   time.Duration
	NodeGroupCreate time.Duration
	NodeGroupDelete time.Duration
	Addon           time.Duration
	Delete          time.Duration
}

// DefaultTimeouts returns production waiter bounds.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ClusterCreate:   30 * time.Minute,
		ClusterDelete:   20 * time.Minute,
		NodeGroupCreate: 20 * time.Minute,
		NodeGroupDelete: 15 * time.Minute,
		Addon:           10 * time.Minute,
		Delete:          10 * time.Minute,
	}
}

// RealClient implements InfrastructureManager against the live AWS APIs.
// The underlying service clients are immutable and safe for concurrent use.
type RealClient struct {
	ec2      *ec2.Client
	ecr      *ecr.Client
	eks      *eks.Client
	iam      *iam.Client
	sts      *sts.Client
	s3       *s3.Client
	region   string
	timeouts Timeouts
}

var _ InfrastructureManager = (*RealClient)(nil)

// NewClient builds a client from the ambient credential chain.
func NewClient(ctx context.Context, region string) (*RealClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewClientFromConfig(cfg), nil
}

// NewClientWithStaticCredentials builds a client from explicit keys. The
// e2e suite uses it; normal runs resolve the default chain.
func NewClientWithStaticCredentials(ctx context.Context, region, accessKeyID, secretAccessKey string) (*RealClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewClientFromConfig(cfg), nil
}

// NewClientFromConfig builds a client from an already resolved SDK config.
func NewClientFromConfig(cfg aws.Config) *RealClient {
	return &RealClient{
		ec2:      ec2.NewFromConfig(cfg),
		ecr:      ecr.NewFromConfig(cfg),
		eks:      eks.NewFromConfig(cfg),
		iam:      iam.NewFromConfig(cfg),
		sts:      sts.NewFromConfig(cfg),
		s3:       s3.NewFromConfig(cfg),
		region:   cfg.Region,
		timeouts: DefaultTimeouts(),
	}
}

// WithTimeouts overrides the waiter bounds.
func (c *RealClient) WithTimeouts(t Timeouts) *RealClient {
	c.timeouts = t
	return c
}

// Region returns the region the client operates in.
func (c *RealClient) Region() string {
	return c.region
}
