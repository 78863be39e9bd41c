// Package naming provides consistent naming functions for stack resources.
//
// Resource names follow the pattern {cluster}-{type} (VPC, subnets, roles,
// node group); the registry and the cluster itself take the bare cluster
// name. Teardown relies on the same derivations, so names must stay stable
// across releases.
package naming
