package aws

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// tagSpec builds the TagSpecifications block that tags a resource at create
// time. Tagging at create is what keeps every resource discoverable by its
// key even when the process dies mid-run.
func tagSpec(resourceType ec2types.ResourceType, tags map[string]string) []ec2types.TagSpecification {
	if len(tags) == 0 {
		return nil
	}
	return []ec2types.TagSpecification{{
		ResourceType: resourceType,
		Tags:         toEC2Tags(tags),
	}}
}

func toEC2Tags(tags map[string]string) []ec2types.Tag {
	out := make([]ec2types.Tag, 0, len(tags))
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		out = append(out, ec2types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func fromEC2Tags(tags []ec2types.Tag) map[string]string {
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		out[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return out
}

func nameFilter(name string) ec2types.Filter {
	return ec2types.Filter{Name: aws.String("tag:Name"), Values: []string{name}}
}

// EnsureNetwork reconciles the VPC.
func (c *RealClient) EnsureNetwork(ctx context.Context, spec NetworkSpec) (*Network, Outcome, error) {
	return (&EnsureOperation[Network]{
		Key:          spec.Name,
		ResourceType: "network",
		Probe:        func(ctx context.Context) (*Network, error) { return c.GetNetwork(ctx, spec.Name) },
		Create:       func(ctx context.Context) (*Network, error) { return c.createNetwork(ctx, spec) },
	}).Execute(ctx)
}

// GetNetwork probes the VPC by name tag, nil when absent.
func (c *RealClient) GetNetwork(ctx context.Context, name string) (*Network, error) {
	out, err := c.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []ec2types.Filter{
			nameFilter(name),
			{Name: aws.String("state"), Values: []string{"pending", "available"}},
		},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	switch len(out.Vpcs) {
	case 0:
		return nil, nil
	case 1:
		vpc := out.Vpcs[0]
		return &Network{
			ID:   aws.ToString(vpc.VpcId),
			CIDR: aws.ToString(vpc.CidrBlock),
			Tags: fromEC2Tags(vpc.Tags),
		}, nil
	default:
		return nil, fmt.Errorf("%d networks match tag Name=%q", len(out.Vpcs), name)
	}
}

func (c *RealClient) createNetwork(ctx context.Context, spec NetworkSpec) (*Network, error) {
	out, err := c.ec2.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock:         aws.String(spec.CIDR),
		TagSpecifications: tagSpec(ec2types.ResourceTypeVpc, spec.Tags),
	})
	if err != nil {
		return nil, err
	}
	vpcID := aws.ToString(out.Vpc.VpcId)

	// The cluster endpoint and node registration need DNS resolution and
	// hostnames inside the VPC. The two attributes must be set one call at
	// a time.
	for _, attr := range []ec2.ModifyVpcAttributeInput{
		{VpcId: aws.String(vpcID), EnableDnsSupport: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)}},
		{VpcId: aws.String(vpcID), EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)}},
	} {
		if _, err := c.ec2.ModifyVpcAttribute(ctx, &attr); err != nil {
			return nil, fmt.Errorf("enabling DNS attributes on %s: %w", vpcID, err)
		}
	}

	return &Network{ID: vpcID, CIDR: spec.CIDR, Tags: spec.Tags}, nil
}

// DeleteNetwork removes the VPC. Deletes are retried while dependent
// interfaces are still releasing.
func (c *RealClient) DeleteNetwork(ctx context.Context, name string) (Outcome, error) {
	return (&DeleteOperation[Network]{
		Key:          name,
		ResourceType: "network",
		Probe:        func(ctx context.Context) (*Network, error) { return c.GetNetwork(ctx, name) },
		Delete: func(ctx context.Context, existing *Network) error {
			_, err := c.ec2.DeleteVpc(ctx, &ec2.DeleteVpcInput{VpcId: aws.String(existing.ID)})
			return err
		},
	}).Execute(ctx)
}

// EnsureSubnet reconciles one subnet.
func (c *RealClient) EnsureSubnet(ctx context.Context, spec SubnetSpec) (*Subnet, Outcome, error) {
	return (&EnsureOperation[Subnet]{
		Key:          spec.Name,
		ResourceType: "subnet",
		Probe:        func(ctx context.Context) (*Subnet, error) { return c.getSubnet(ctx, spec.Name) },
		Create:       func(ctx context.Context) (*Subnet, error) { return c.createSubnet(ctx, spec) },
	}).Execute(ctx)
}

func (c *RealClient) getSubnet(ctx context.Context, name string) (*Subnet, error) {
	out, err := c.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{
			nameFilter(name),
			{Name: aws.String("state"), Values: []string{"pending", "available"}},
		},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	switch len(out.Subnets) {
	case 0:
		return nil, nil
	case 1:
		subnet := out.Subnets[0]
		return &Subnet{
			ID:               aws.ToString(subnet.SubnetId),
			NetworkID:        aws.ToString(subnet.VpcId),
			CIDR:             aws.ToString(subnet.CidrBlock),
			AvailabilityZone: aws.ToString(subnet.AvailabilityZone),
			Public:           aws.ToBool(subnet.MapPublicIpOnLaunch),
		}, nil
	default:
		return nil, fmt.Errorf("%d subnets match tag Name=%q", len(out.Subnets), name)
	}
}

func (c *RealClient) createSubnet(ctx context.Context, spec SubnetSpec) (*Subnet, error) {
	out, err := c.ec2.CreateSubnet(ctx, &ec2.CreateSubnetInput{
		VpcId:             aws.String(spec.NetworkID),
		CidrBlock:         aws.String(spec.CIDR),
		AvailabilityZone:  aws.String(spec.AvailabilityZone),
		TagSpecifications: tagSpec(ec2types.ResourceTypeSubnet, spec.Tags),
	})
	if err != nil {
		return nil, err
	}
	subnetID := aws.ToString(out.Subnet.SubnetId)

	if spec.Public {
		_, err = c.ec2.ModifySubnetAttribute(ctx, &ec2.ModifySubnetAttributeInput{
			SubnetId:            aws.String(subnetID),
			MapPublicIpOnLaunch: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
		})
		if err != nil {
			return nil, fmt.Errorf("enabling public IP assignment on %s: %w", subnetID, err)
		}
	}

	return &Subnet{
		ID:               subnetID,
		NetworkID:        spec.NetworkID,
		CIDR:             spec.CIDR,
		AvailabilityZone: spec.AvailabilityZone,
		Public:           spec.Public,
	}, nil
}

// DeleteSubnet removes one subnet by name tag.
func (c *RealClient) DeleteSubnet(ctx context.Context, name string) (Outcome, error) {
	return (&DeleteOperation[Subnet]{
		Key:          name,
		ResourceType: "subnet",
		Probe:        func(ctx context.Context) (*Subnet, error) { return c.getSubnet(ctx, name) },
		Delete: func(ctx context.Context, existing *Subnet) error {
			_, err := c.ec2.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{SubnetId: aws.String(existing.ID)})
			return err
		},
	}).Execute(ctx)
}

// EnsureInternetGateway reconciles the gateway and its VPC attachment.
func (c *RealClient) EnsureInternetGateway(ctx context.Context, spec InternetGatewaySpec) (*InternetGateway, Outcome, error) {
	return (&EnsureOperation[InternetGateway]{
		Key:          spec.Name,
		ResourceType: "internet gateway",
		Probe:        func(ctx context.Context) (*InternetGateway, error) { return c.getInternetGateway(ctx, spec.Name) },
		Create:       func(ctx context.Context) (*InternetGateway, error) { return c.createInternetGateway(ctx, spec) },
	}).Execute(ctx)
}

func (c *RealClient) getInternetGateway(ctx context.Context, name string) (*InternetGateway, error) {
	out, err := c.ec2.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	switch len(out.InternetGateways) {
	case 0:
		return nil, nil
	case 1:
		igw := out.InternetGateways[0]
		return &InternetGateway{
			ID:       aws.ToString(igw.InternetGatewayId),
			Attached: len(igw.Attachments) > 0,
		}, nil
	default:
		return nil, fmt.Errorf("%d internet gateways match tag Name=%q", len(out.InternetGateways), name)
	}
}

func (c *RealClient) createInternetGateway(ctx context.Context, spec InternetGatewaySpec) (*InternetGateway, error) {
	out, err := c.ec2.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{
		TagSpecifications: tagSpec(ec2types.ResourceTypeInternetGateway, spec.Tags),
	})
	if err != nil {
		return nil, err
	}
	igwID := aws.ToString(out.InternetGateway.InternetGatewayId)

	_, err = c.ec2.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: aws.String(igwID),
		VpcId:             aws.String(spec.NetworkID),
	})
	if err != nil {
		return nil, fmt.Errorf("attaching %s to %s: %w", igwID, spec.NetworkID, err)
	}

	return &InternetGateway{ID: igwID, Attached: true}, nil
}

// DeleteInternetGateway detaches the gateway from its VPC and removes it.
func (c *RealClient) DeleteInternetGateway(ctx context.Context, name string) (Outcome, error) {
	return (&DeleteOperation[InternetGateway]{
		Key:          name,
		ResourceType: "internet gateway",
		Probe:        func(ctx context.Context) (*InternetGateway, error) { return c.getInternetGateway(ctx, name) },
		Delete:       func(ctx context.Context, existing *InternetGateway) error { return c.detachAndDeleteGateway(ctx, existing.ID) },
	}).Execute(ctx)
}

func (c *RealClient) detachAndDeleteGateway(ctx context.Context, igwID string) error {
	out, err := c.ec2.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
		InternetGatewayIds: []string{igwID},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	for _, igw := range out.InternetGateways {
		for _, att := range igw.Attachments {
			_, err := c.ec2.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
				InternetGatewayId: aws.String(igwID),
				VpcId:             att.VpcId,
			})
			if err != nil && !IsNotFound(err) {
				return err
			}
		}
	}
	_, err = c.ec2.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{InternetGatewayId: aws.String(igwID)})
	return err
}

// EnsureRouteTable reconciles the public route table: a default route to
// the gateway plus the public subnet association.
func (c *RealClient) EnsureRouteTable(ctx context.Context, spec RouteTableSpec) (*RouteTable, Outcome, error) {
	return (&EnsureOperation[RouteTable]{
		Key:          spec.Name,
		ResourceType: "route table",
		Probe:        func(ctx context.Context) (*RouteTable, error) { return c.getRouteTable(ctx, spec.Name) },
		Create:       func(ctx context.Context) (*RouteTable, error) { return c.createRouteTable(ctx, spec) },
	}).Execute(ctx)
}

func (c *RealClient) getRouteTable(ctx context.Context, name string) (*RouteTable, error) {
	out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	switch len(out.RouteTables) {
	case 0:
		return nil, nil
	case 1:
		rt := out.RouteTables[0]
		associated := false
		for _, assoc := range rt.Associations {
			if assoc.SubnetId != nil {
				associated = true
			}
		}
		return &RouteTable{ID: aws.ToString(rt.RouteTableId), Associated: associated}, nil
	default:
		return nil, fmt.Errorf("%d route tables match tag Name=%q", len(out.RouteTables), name)
	}
}

func (c *RealClient) createRouteTable(ctx context.Context, spec RouteTableSpec) (*RouteTable, error) {
	out, err := c.ec2.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId:             aws.String(spec.NetworkID),
		TagSpecifications: tagSpec(ec2types.ResourceTypeRouteTable, spec.Tags),
	})
	if err != nil {
		return nil, err
	}
	rtID := aws.ToString(out.RouteTable.RouteTableId)

	_, err = c.ec2.CreateRoute(ctx, &ec2.CreateRouteInput{
		RouteTableId:         aws.String(rtID),
		DestinationCidrBlock: aws.String("0.0.0.0/0"),
		GatewayId:            aws.String(spec.GatewayID),
	})
	if err != nil {
		return nil, fmt.Errorf("adding default route to %s: %w", rtID, err)
	}

	_, err = c.ec2.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
		RouteTableId: aws.String(rtID),
		SubnetId:     aws.String(spec.SubnetID),
	})
	if err != nil {
		return nil, fmt.Errorf("associating %s with subnet %s: %w", rtID, spec.SubnetID, err)
	}

	return &RouteTable{ID: rtID, Associated: true}, nil
}

// DeleteRouteTable disassociates and removes the route table.
func (c *RealClient) DeleteRouteTable(ctx context.Context, name string) (Outcome, error) {
	return (&DeleteOperation[RouteTable]{
		Key:          name,
		ResourceType: "route table",
		Probe:        func(ctx context.Context) (*RouteTable, error) { return c.getRouteTable(ctx, name) },
		Delete:       func(ctx context.Context, existing *RouteTable) error { return c.disassociateAndDeleteRouteTable(ctx, existing.ID) },
	}).Execute(ctx)
}

func (c *RealClient) disassociateAndDeleteRouteTable(ctx context.Context, rtID string) error {
	out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{RouteTableIds: []string{rtID}})
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	for _, rt := range out.RouteTables {
		for _, assoc := range rt.Associations {
			if assoc.SubnetId == nil || aws.ToBool(assoc.Main) {
				continue
			}
			_, err := c.ec2.DisassociateRouteTable(ctx, &ec2.DisassociateRouteTableInput{
				AssociationId: assoc.RouteTableAssociationId,
			})
			if err != nil && !IsNotFound(err) {
				return err
			}
		}
	}
	_, err = c.ec2.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{RouteTableId: aws.String(rtID)})
	return err
}

// EnsureSecurityBoundary reconciles the security group with its ingress
// rules. An existing group's rules are left as found.
func (c *RealClient) EnsureSecurityBoundary(ctx context.Context, spec SecurityBoundarySpec) (*SecurityGroup, Outcome, error) {
	return (&EnsureOperation[SecurityGroup]{
		Key:          spec.Name,
		ResourceType: "security boundary",
		Probe:        func(ctx context.Context) (*SecurityGroup, error) { return c.getSecurityGroup(ctx, spec.Name) },
		Create:       func(ctx context.Context) (*SecurityGroup, error) { return c.createSecurityGroup(ctx, spec) },
	}).Execute(ctx)
}

func (c *RealClient) getSecurityGroup(ctx context.Context, name string) (*SecurityGroup, error) {
	out, err := c.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	switch len(out.SecurityGroups) {
	case 0:
		return nil, nil
	case 1:
		sg := out.SecurityGroups[0]
		return &SecurityGroup{
			ID:        aws.ToString(sg.GroupId),
			NetworkID: aws.ToString(sg.VpcId),
		}, nil
	default:
		return nil, fmt.Errorf("%d security groups match tag Name=%q", len(out.SecurityGroups), name)
	}
}

func (c *RealClient) createSecurityGroup(ctx context.Context, spec SecurityBoundarySpec) (*SecurityGroup, error) {
	out, err := c.ec2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:         aws.String(spec.Name),
		Description:       aws.String(spec.Description),
		VpcId:             aws.String(spec.NetworkID),
		TagSpecifications: tagSpec(ec2types.ResourceTypeSecurityGroup, spec.Tags),
	})
	if err != nil {
		return nil, err
	}
	groupID := aws.ToString(out.GroupId)

	if len(spec.Ingress) > 0 {
		permissions := make([]ec2types.IpPermission, 0, len(spec.Ingress))
		for _, rule := range spec.Ingress {
			permissions = append(permissions, ec2types.IpPermission{
				IpProtocol: aws.String(rule.Protocol),
				FromPort:   aws.Int32(rule.Port),
				ToPort:     aws.Int32(rule.Port),
				IpRanges:   []ec2types.IpRange{{CidrIp: aws.String(rule.CIDR)}},
			})
		}
		_, err = c.ec2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       aws.String(groupID),
			IpPermissions: permissions,
		})
		if err != nil && !IsAlreadyExists(err) {
			return nil, fmt.Errorf("authorizing ingress on %s: %w", groupID, err)
		}
	}

	return &SecurityGroup{ID: groupID, NetworkID: spec.NetworkID}, nil
}

// DeleteSecurityBoundary removes the security group.
func (c *RealClient) DeleteSecurityBoundary(ctx context.Context, name string) (Outcome, error) {
	return (&DeleteOperation[SecurityGroup]{
		Key:          name,
		ResourceType: "security boundary",
		Probe:        func(ctx context.Context) (*SecurityGroup, error) { return c.getSecurityGroup(ctx, name) },
		Delete: func(ctx context.Context, existing *SecurityGroup) error {
			_, err := c.ec2.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{GroupId: aws.String(existing.ID)})
			return err
		},
	}).Execute(ctx)
}
