// Package gitops points the repository's workflow files at the provisioned
// stack: each configured workflow gets its role-to-assume and aws-region
// lines rewritten in place.
//
// The phase has no teardown. Workflow edits live in the repository's
// history; reverting them is a git operation, not an infrastructure one.
package gitops
