package config

import (
	"os"
	"time"
)

// Timeouts holds the wait budgets for long-running provider operations.
// These values can be customized via environment variables.
type Timeouts struct {
	ClusterCreate   time.Duration // control plane creation
	ClusterDelete   time.Duration // control plane deletion
	NodeGroupCreate time.Duration // node group creation
	NodeGroupDelete time.Duration // node group deletion
	Addon           time.Duration // add-on install/update settling
	Delete          time.Duration // all other delete operations
	NodeReady       time.Duration // nodes reaching Ready after provisioning
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - EKSTRAP_TIMEOUT_CLUSTER_CREATE (default: 30m)
//   - EKSTRAP_TIMEOUT_CLUSTER_DELETE (default: 20m)
//   - EKSTRAP_TIMEOUT_NODEGROUP_CREATE (default: 20m)
//   - EKSTRAP_TIMEOUT_NODEGROUP_DELETE (default: 15m)
//   - EKSTRAP_TIMEOUT_ADDON (default: 10m)
//   - EKSTRAP_TIMEOUT_DELETE (default: 10m)
//   - EKSTRAP_TIMEOUT_NODE_READY (default: 5m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ClusterCreate:   parseDuration("EKSTRAP_TIMEOUT_CLUSTER_CREATE", 30*time.Minute),
		ClusterDelete:   parseDuration("EKSTRAP_TIMEOUT_CLUSTER_DELETE", 20*time.Minute),
		NodeGroupCreate: parseDuration("EKSTRAP_TIMEOUT_NODEGROUP_CREATE", 20*time.Minute),
		NodeGroupDelete: parseDuration("EKSTRAP_TIMEOUT_NODEGROUP_DELETE", 15*time.Minute),
		Addon:           parseDuration("EKSTRAP_TIMEOUT_ADDON", 10*time.Minute),
		Delete:          parseDuration("EKSTRAP_TIMEOUT_DELETE", 10*time.Minute),
		NodeReady:       parseDuration("EKSTRAP_TIMEOUT_NODE_READY", 5*time.Minute),
	}
}

// TestTimeouts returns short timeouts suitable for unit tests.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		ClusterCreate:   2 * time.Second,
		ClusterDelete:   2 * time.Second,
		NodeGroupCreate: 2 * time.Second,
		NodeGroupDelete: 2 * time.Second,
		Addon:           1 * time.Second,
		Delete:          1 * time.Second,
		NodeReady:       1 * time.Second,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}
