// Package network provisions the cluster's networking layer.
//
// It reconciles the VPC with DNS resolution and hostnames enabled, the
// internet gateway, one public and one private subnet in distinct
// availability zones, the public route table, and the security boundary
// with its declared ingress rules. All resources are created idempotently
// and tagged for cluster association.
package network
