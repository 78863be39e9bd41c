package policy

import (
	"encoding/json"
	"fmt"
)

// Version is the policy language version AWS expects on every document.
const Version = "2012-10-17"

// Managed policy ARNs attached to the stack's roles.
const (
	ClusterPolicyARN    = "arn:aws:iam::aws:policy/AmazonEKSClusterPolicy"
	WorkerNodePolicyARN = "arn:aws:iam::aws:policy/AmazonEKSWorkerNodePolicy"
	CNIPolicyARN        = "arn:aws:iam::aws:policy/AmazonEKS_CNI_Policy"
	RegistryPullARN     = "arn:aws:iam::aws:policy/AmazonEC2ContainerRegistryReadOnly"
)

// ClusterAdminAccessPolicyARN is the EKS access policy associated with the
// deploy role's access entry.
const ClusterAdminAccessPolicyARN = "arn:aws:eks::aws:cluster-access-policy/AmazonEKSClusterAdminPolicy"

// Document is an IAM policy document. Statements always carry actions and
// resources as lists, even single-element ones, so the structural patcher
// never has to guess between the string and list encodings.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is one policy statement.
type Statement struct {
	Sid       string                         `json:"Sid,omitempty"`
	Effect    string                         `json:"Effect"`
	Principal *Principal                     `json:"Principal,omitempty"`
	Action    []string                       `json:"Action"`
	Resource  []string                       `json:"Resource,omitempty"`
	Condition map[string]map[string][]string `json:"Condition,omitempty"`
}

// Principal identifies who a trust statement grants access to.
type Principal struct {
	Federated string `json:"Federated,omitempty"`
	Service   string `json:"Service,omitempty"`
}

// ServiceTrust returns the trust document allowing an AWS service principal
// (eks.amazonaws.com, ec2.amazonaws.com) to assume a role.
func ServiceTrust(service string) (string, error) {
	doc := Document{
		Version: Version,
		Statement: []Statement{{
			Effect:    "Allow",
			Principal: &Principal{Service: service},
			Action:    []string{"sts:AssumeRole"},
		}},
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling service trust document: %w", err)
	}
	return string(out), nil
}
