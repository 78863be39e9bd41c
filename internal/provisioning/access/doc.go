// Package access makes the provisioned cluster reachable: it writes the
// kubeconfig entry and waits for the worker nodes to join.
package access
