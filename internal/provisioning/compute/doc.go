// Package compute provisions the managed node group and the instance role
// its nodes run under.
package compute
