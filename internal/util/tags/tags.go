// Package tags provides consistent tagging utilities for AWS resources.
//
// Standard tag keys use the ekstrap.io domain prefix for namespacing. The
// Name tag is load-bearing: probes look resources up by it, so every
// resource created by the tool must carry it at create time.
package tags

import "maps"

// Standard tag keys.
const (
	// KeyName is the console display name and the probe lookup key.
	KeyName = "Name"

	// KeyCluster identifies which stack a resource belongs to.
	KeyCluster = "ekstrap.io/cluster"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "ekstrap.io/managed-by"
)

// ManagedBy value for resources created by this tool.
const ManagedByEkstrap = "ekstrap"

// Builder provides a fluent interface for building resource tag sets.
type Builder struct {
	tags map[string]string
}

// NewBuilder creates a builder with the cluster and managed-by keys pre-set.
func NewBuilder(clusterName string) *Builder {
	return &Builder{
		tags: map[string]string{
			KeyCluster:   clusterName,
			KeyManagedBy: ManagedByEkstrap,
		},
	}
}

// WithName sets the Name tag the resource will be probed by.
func (b *Builder) WithName(name string) *Builder {
	b.tags[KeyName] = name
	return b
}

// With adds an arbitrary tag.
func (b *Builder) With(key, value string) *Builder {
	b.tags[key] = value
	return b
}

// Build returns a copy of the accumulated tags.
func (b *Builder) Build() map[string]string {
	out := make(map[string]string, len(b.tags))
	maps.Copy(out, b.tags)
	return out
}

// ForResource returns the standard tag set for a named resource.
func ForResource(clusterName, name string) map[string]string {
	return NewBuilder(clusterName).WithName(name).Build()
}
