package netutil

import (
	"fmt"
	"net"
)

// SplitCIDR derives the index-th subnet of the given prefix length from a
// parent CIDR block. Used to carve subnet blocks out of the VPC block when
// they are not configured explicitly.
func SplitCIDR(parent string, newPrefixLen, index int) (string, error) {
	_, ipNet, err := net.ParseCIDR(parent)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR %q: %w", parent, err)
	}

	parentLen, bits := ipNet.Mask.Size()
	if bits != 32 {
		return "", fmt.Errorf("only IPv4 CIDRs are supported, got %q", parent)
	}
	if newPrefixLen < parentLen || newPrefixLen > 28 {
		return "", fmt.Errorf("prefix /%d not usable within %q", newPrefixLen, parent)
	}
	if index < 0 || index >= 1<<(newPrefixLen-parentLen) {
		return "", fmt.Errorf("subnet index %d out of range for /%d within %q", index, newPrefixLen, parent)
	}

	base := ipNet.IP.To4()
	network := uint32(base[0])<<24 | uint32(base[1])<<16 | uint32(base[2])<<8 | uint32(base[3])
	network |= uint32(index) << (32 - newPrefixLen)

	ip := net.IPv4(byte(network>>24), byte(network>>16), byte(network>>8), byte(network))
	return fmt.Sprintf("%s/%d", ip.String(), newPrefixLen), nil
}
