// Package identity establishes the GitHub-to-AWS trust chain: the OIDC
// identity provider for GitHub's token issuer, the deploy role that
// workflow runs assume through it, and the access binding granting that
// role cluster admin.
//
// The provider is account-global and shared between clusters, so teardown
// reports it but never deletes it.
package identity
