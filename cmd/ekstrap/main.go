// Package main is the entry point for the ekstrap CLI.
//
// ekstrap provisions an Amazon EKS cluster wired for GitHub Actions
// deployments: VPC, subnets, registry, cluster, nodes, managed add-ons,
// OIDC-federated deploy role and patched workflow files. Every command is
// idempotent; re-running converges toward the configured state instead of
// failing on what already exists.
//
// Commands: init, provision, teardown, doctor, version.
//
// For detailed usage information, run:
//
//	ekstrap --help
package main

import (
	"fmt"
	"os"

	"github.com/ekstrap/ekstrap/cmd/ekstrap/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
