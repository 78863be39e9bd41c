// Package provisioning provides shared types, interfaces, and phase
// plumbing for cluster provisioning and teardown.
//
// # Subpackages
//
//   - network/ — VPC, subnets, routing, security boundary
//   - registry/ — container registry
//   - cluster/ — control plane and its service role
//   - compute/ — managed node group and its node role
//   - addons/ — managed add-on reconciliation
//   - access/ — kubeconfig and node readiness
//   - identity/ — GitHub OIDC provider, deploy role, access binding
//   - gitops/ — workflow file patching
//   - report/ — run summary persistence
//
// # Core Types
//
// Context carries configuration, resolved run identity, state, and the
// infrastructure client. Phase defines a provisioning step with Name() and
// Provision() methods; Reverser adds Teardown() for phases whose resources
// outlive the run. State accumulates descriptors from each phase along with
// the run summary.
package provisioning
