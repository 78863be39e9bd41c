package provisioning

import (
	"github.com/ekstrap/ekstrap/internal/addons"
	"github.com/ekstrap/ekstrap/internal/platform/aws"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Network results (populated by the network, subnets, and security phases)
	Network          *aws.Network
	InternetGateway  *aws.InternetGateway
	PublicSubnet     *aws.Subnet
	PrivateSubnet    *aws.Subnet
	RouteTable       *aws.RouteTable
	SecurityBoundary *aws.SecurityGroup

	// Registry result
	Registry *aws.Registry

	// Cluster results (populated by the cluster and compute phases)
	ClusterRole *aws.Role
	Cluster     *aws.Cluster
	NodeRole    *aws.Role
	NodeGroup   *aws.NodeGroup

	// Add-on results, in configured order
	Addons []addons.Result

	// Access results (populated by the access phase)
	Kubeconfig  []byte
	KubeContext string

	// Identity results (populated by the identity phases)
	OIDCProvider  *aws.OIDCProvider
	DeployRole    *aws.Role
	AccessBinding *aws.AccessBinding

	// Workflow files rewritten by the gitops phase
	PatchedWorkflows []string

	// Summary accumulates outcomes across all phases for the run report.
	Summary *Summary
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{
		Summary: NewSummary(),
	}
}
