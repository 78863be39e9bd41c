package naming

import "fmt"

// Naming functions for stack resources.
// Every resource carries its derived name as the Name tag (or the
// provider-native name for natively named kinds), which is the identifying
// key re-runs probe by.

func Network(cluster string) string {
	return fmt.Sprintf("%s-vpc", cluster)
}

func PublicSubnet(cluster string) string {
	return fmt.Sprintf("%s-public", cluster)
}

func PrivateSubnet(cluster string) string {
	return fmt.Sprintf("%s-private", cluster)
}

func InternetGateway(cluster string) string {
	return fmt.Sprintf("%s-igw", cluster)
}

func PublicRouteTable(cluster string) string {
	return fmt.Sprintf("%s-public-rt", cluster)
}

func SecurityBoundary(cluster string) string {
	return fmt.Sprintf("%s-sg", cluster)
}

func Registry(cluster string) string {
	return cluster
}

func Cluster(cluster string) string {
	return cluster
}

func NodeGroup(cluster string) string {
	return fmt.Sprintf("%s-nodes", cluster)
}

func ClusterServiceRole(cluster string) string {
	return fmt.Sprintf("%s-cluster-role", cluster)
}

func NodeRole(cluster string) string {
	return fmt.Sprintf("%s-node-role", cluster)
}

func DeployRole(cluster string) string {
	return fmt.Sprintf("%s-deploy", cluster)
}

func DeployPolicy(cluster string) string {
	return fmt.Sprintf("%s-deploy-policy", cluster)
}

func KubeContext(cluster, region string) string {
	return fmt.Sprintf("%s@%s", cluster, region)
}

// ReportBucket includes the account ID because bucket names are global.
func ReportBucket(cluster, accountID string) string {
	return fmt.Sprintf("%s-reports-%s", cluster, accountID)
}
