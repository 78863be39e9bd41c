// Package cluster provisions the managed control plane and the IAM role it
// assumes.
//
// The service role must exist before cluster creation, so both reconcile in
// one phase, role first. Cluster creation blocks until the control plane
// reports active.
package cluster
