package naming

import "testing"

func TestNamingFunctions(t *testing.T) {
	cluster := "acme-web"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Network", Network(cluster), "acme-web-vpc"},
		{"PublicSubnet", PublicSubnet(cluster), "acme-web-public"},
		{"PrivateSubnet", PrivateSubnet(cluster), "acme-web-private"},
		{"InternetGateway", InternetGateway(cluster), "acme-web-igw"},
		{"PublicRouteTable", PublicRouteTable(cluster), "acme-web-public-rt"},
		{"SecurityBoundary", SecurityBoundary(cluster), "acme-web-sg"},
		{"Registry", Registry(cluster), "acme-web"},
		{"Cluster", Cluster(cluster), "acme-web"},
		{"NodeGroup", NodeGroup(cluster), "acme-web-nodes"},
		{"ClusterServiceRole", ClusterServiceRole(cluster), "acme-web-cluster-role"},
		{"NodeRole", NodeRole(cluster), "acme-web-node-role"},
		{"DeployRole", DeployRole(cluster), "acme-web-deploy"},
		{"DeployPolicy", DeployPolicy(cluster), "acme-web-deploy-policy"},
		{"KubeContext", KubeContext(cluster, "il-central-1"), "acme-web@il-central-1"},
		{"ReportBucket", ReportBucket(cluster, "111122223333"), "acme-web-reports-111122223333"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}
