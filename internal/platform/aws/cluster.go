package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
)

// EnsureCluster reconciles the managed cluster. Creation blocks until the
// control plane reports active.
func (c *RealClient) EnsureCluster(ctx context.Context, spec ClusterSpec) (*Cluster, Outcome, error) {
	return (&EnsureOperation[Cluster]{
		Key:          spec.Name,
		ResourceType: "cluster",
		Probe:        func(ctx context.Context) (*Cluster, error) { return c.GetCluster(ctx, spec.Name) },
		Create:       func(ctx context.Context) (*Cluster, error) { return c.createCluster(ctx, spec) },
	}).Execute(ctx)
}

// GetCluster probes the cluster by name, nil when absent.
func (c *RealClient) GetCluster(ctx context.Context, name string) (*Cluster, error) {
	out, err := c.eks.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return clusterDescriptor(out.Cluster), nil
}

func clusterDescriptor(cluster *ekstypes.Cluster) *Cluster {
	d := &Cluster{
		ARN:     aws.ToString(cluster.Arn),
		Name:    aws.ToString(cluster.Name),
		Status:  string(cluster.Status),
		Version: aws.ToString(cluster.Version),
	}
	if cluster.Endpoint != nil {
		d.Endpoint = aws.ToString(cluster.Endpoint)
	}
	if cluster.CertificateAuthority != nil {
		d.CertificateAuthority = aws.ToString(cluster.CertificateAuthority.Data)
	}
	return d
}

func (c *RealClient) createCluster(ctx context.Context, spec ClusterSpec) (*Cluster, error) {
	input := &eks.CreateClusterInput{
		Name:    aws.String(spec.Name),
		RoleArn: aws.String(spec.RoleARN),
		ResourcesVpcConfig: &ekstypes.VpcConfigRequest{
			SubnetIds:        spec.SubnetIDs,
			SecurityGroupIds: spec.SecurityGroupIDs,
		},
		// Access entries drive the access-binding stage; the config-map
		// path stays on for node bootstrap compatibility.
		AccessConfig: &ekstypes.CreateAccessConfigRequest{
			AuthenticationMode: ekstypes.AuthenticationModeApiAndConfigMap,
		},
		Tags: spec.Tags,
	}
	if spec.Version != "" {
		input.Version = aws.String(spec.Version)
	}

	out, err := c.eks.CreateCluster(ctx, input)
	if err != nil {
		return nil, err
	}

	waiter := eks.NewClusterActiveWaiter(c.eks)
	if err := waiter.Wait(ctx, &eks.DescribeClusterInput{Name: aws.String(spec.Name)}, c.timeouts.ClusterCreate); err != nil {
		return nil, err
	}
	return clusterDescriptor(out.Cluster), nil
}

// DeleteCluster removes the cluster and blocks until it is gone; the
// network stage cannot tear down while control-plane interfaces linger.
func (c *RealClient) DeleteCluster(ctx context.Context, name string) (Outcome, error) {
	return (&DeleteOperation[Cluster]{
		Key:          name,
		ResourceType: "cluster",
		Probe:        func(ctx context.Context) (*Cluster, error) { return c.GetCluster(ctx, name) },
		Delete: func(ctx context.Context, existing *Cluster) error {
			_, err := c.eks.DeleteCluster(ctx, &eks.DeleteClusterInput{Name: aws.String(existing.Name)})
			return err
		},
		Wait: func(ctx context.Context, existing *Cluster) error {
			waiter := eks.NewClusterDeletedWaiter(c.eks)
			return waiter.Wait(ctx, &eks.DescribeClusterInput{Name: aws.String(existing.Name)}, c.timeouts.ClusterDelete)
		},
	}).Execute(ctx)
}

// EnsureNodeGroup reconciles the managed node group. Creation blocks until
// the nodes have joined.
func (c *RealClient) EnsureNodeGroup(ctx context.Context, spec NodeGroupSpec) (*NodeGroup, Outcome, error) {
	return (&EnsureOperation[NodeGroup]{
		Key:          spec.Name,
		ResourceType: "node group",
		Probe:        func(ctx context.Context) (*NodeGroup, error) { return c.getNodeGroup(ctx, spec.ClusterName, spec.Name) },
		Create:       func(ctx context.Context) (*NodeGroup, error) { return c.createNodeGroup(ctx, spec) },
	}).Execute(ctx)
}

func (c *RealClient) getNodeGroup(ctx context.Context, clusterName, name string) (*NodeGroup, error) {
	out, err := c.eks.DescribeNodegroup(ctx, &eks.DescribeNodegroupInput{
		ClusterName:   aws.String(clusterName),
		NodegroupName: aws.String(name),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &NodeGroup{
		Name:   aws.ToString(out.Nodegroup.NodegroupName),
		Status: string(out.Nodegroup.Status),
	}, nil
}

func (c *RealClient) createNodeGroup(ctx context.Context, spec NodeGroupSpec) (*NodeGroup, error) {
	_, err := c.eks.CreateNodegroup(ctx, &eks.CreateNodegroupInput{
		ClusterName:   aws.String(spec.ClusterName),
		NodegroupName: aws.String(spec.Name),
		NodeRole:      aws.String(spec.RoleARN),
		Subnets:       spec.SubnetIDs,
		InstanceTypes: []string{spec.InstanceType},
		ScalingConfig: &ekstypes.NodegroupScalingConfig{
			DesiredSize: aws.Int32(spec.DesiredSize),
			MinSize:     aws.Int32(spec.MinSize),
			MaxSize:     aws.Int32(spec.MaxSize),
		},
		Tags: spec.Tags,
	})
	if err != nil {
		return nil, err
	}

	waiter := eks.NewNodegroupActiveWaiter(c.eks)
	input := &eks.DescribeNodegroupInput{
		ClusterName:   aws.String(spec.ClusterName),
		NodegroupName: aws.String(spec.Name),
	}
	if err := waiter.Wait(ctx, input, c.timeouts.NodeGroupCreate); err != nil {
		return nil, err
	}
	return &NodeGroup{Name: spec.Name, Status: string(ekstypes.NodegroupStatusActive)}, nil
}

// DeleteNodeGroup removes the node group and blocks until it is gone; the
// cluster delete rejects while node groups remain.
func (c *RealClient) DeleteNodeGroup(ctx context.Context, clusterName, name string) (Outcome, error) {
	return (&DeleteOperation[NodeGroup]{
		Key:          name,
		ResourceType: "node group",
		Probe:        func(ctx context.Context) (*NodeGroup, error) { return c.getNodeGroup(ctx, clusterName, name) },
		Delete: func(ctx context.Context, existing *NodeGroup) error {
			_, err := c.eks.DeleteNodegroup(ctx, &eks.DeleteNodegroupInput{
				ClusterName:   aws.String(clusterName),
				NodegroupName: aws.String(existing.Name),
			})
			return err
		},
		Wait: func(ctx context.Context, existing *NodeGroup) error {
			waiter := eks.NewNodegroupDeletedWaiter(c.eks)
			return waiter.Wait(ctx, &eks.DescribeNodegroupInput{
				ClusterName:   aws.String(clusterName),
				NodegroupName: aws.String(existing.Name),
			}, c.timeouts.NodeGroupDelete)
		},
	}).Execute(ctx)
}
