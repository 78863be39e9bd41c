package identity

import (
	"context"
	"fmt"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/tags"
)

const (
	// GitHubIssuerURL is the token issuer for GitHub Actions workflow runs.
	GitHubIssuerURL = "https://token.actions.githubusercontent.com"

	// STSAudience is the client ID workflow tokens are scoped to.
	STSAudience = "sts.amazonaws.com"
)

// ProviderProvisioner reconciles the OIDC identity provider for GitHub's
// token issuer.
type ProviderProvisioner struct {
	// Thumbprint fetches the issuer's root CA fingerprint. Reached only
	// when the provider must be created; tests stub it out.
	Thumbprint func(ctx context.Context, issuerURL string) (string, error)
}

// NewProviderProvisioner creates a new identity provider provisioner.
func NewProviderProvisioner() *ProviderProvisioner {
	return &ProviderProvisioner{Thumbprint: aws.RootThumbprint}
}

// Name implements the provisioning.Phase interface.
func (p *ProviderProvisioner) Name() string {
	return "identity-provider"
}

// Provision reconciles the identity provider for the GitHub issuer. The
// thumbprint dial to the issuer happens only when the provider is absent;
// re-runs stop at the probe.
func (p *ProviderProvisioner) Provision(ctx *provisioning.Context) error {
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "oidc provider", GitHubIssuerURL)

	observed, err := ctx.Infra.GetOIDCProvider(ctx, GitHubIssuerURL)
	if err != nil {
		return &aws.ProbeError{Kind: "oidc provider", Key: GitHubIssuerURL, Err: err}
	}
	if observed != nil {
		ctx.State.OIDCProvider = observed
		ctx.Record(p.Name(), "oidc provider", GitHubIssuerURL, aws.OutcomePresent, observed.ARN)
		return nil
	}

	fingerprint, err := p.Thumbprint(ctx, GitHubIssuerURL)
	if err != nil {
		return fmt.Errorf("fetching issuer thumbprint: %w", err)
	}

	provider, outcome, err := ctx.Infra.EnsureOIDCProvider(ctx, aws.OIDCProviderSpec{
		URL:         GitHubIssuerURL,
		ClientIDs:   []string{STSAudience},
		Thumbprints: []string{fingerprint},
		Tags:        tags.ForResource(ctx.Config.ClusterName, "github-oidc"),
	})
	if err != nil {
		return err
	}
	ctx.State.OIDCProvider = provider
	ctx.Record(p.Name(), "oidc provider", GitHubIssuerURL, outcome, provider.ARN)

	return nil
}

// Teardown probes the provider and reports it, but never deletes it: other
// clusters' deploy roles in the account may federate through it.
func (p *ProviderProvisioner) Teardown(ctx *provisioning.Context) error {
	observed, err := ctx.Infra.GetOIDCProvider(ctx, GitHubIssuerURL)
	if err != nil {
		return &aws.ProbeError{Kind: "oidc provider", Key: GitHubIssuerURL, Err: err}
	}
	if observed == nil {
		ctx.Record(p.Name(), "oidc provider", GitHubIssuerURL, aws.OutcomeAbsent, "")
		return nil
	}
	ctx.RecordKept(p.Name(), "oidc provider", GitHubIssuerURL, "shared by other clusters in the account")

	return nil
}
