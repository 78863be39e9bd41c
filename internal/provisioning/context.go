package provisioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekstrap/ekstrap/internal/config"
	"github.com/ekstrap/ekstrap/internal/platform/aws"
)

// RunContext carries the identity facts resolved once per invocation: the
// target account and region, and the GitHub repository the deploy role
// trusts.
type RunContext struct {
	AccountID    string
	Region       string
	Organization string
	Repository   string
	Branch       string
}

// ResolveRun resolves the caller's account through accounts and fills the
// repository coordinates from cfg, falling back to the origin remote of the
// working directory where the config leaves them blank. Discovery failure is
// not an error here; phases that need the repository report its absence
// themselves, so teardown never depends on a git checkout.
func ResolveRun(ctx context.Context, cfg *config.Config, accounts aws.AccountResolver) (*RunContext, error) {
	accountID, err := accounts.AccountID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving account: %w", err)
	}

	run := &RunContext{
		AccountID:    accountID,
		Region:       cfg.Region,
		Organization: cfg.GitHub.Organization,
		Repository:   cfg.GitHub.Repository,
		Branch:       cfg.GitHub.Branch,
	}
	if run.Organization == "" || run.Repository == "" {
		if repo, err := config.DiscoverRepository(ctx); err == nil {
			if run.Organization == "" {
				run.Organization = repo.Organization
			}
			if run.Repository == "" {
				run.Repository = repo.Name
			}
		}
	}
	return run, nil
}

// RequireRepository reports an error when the repository coordinates are
// still unknown. Phases that patch trust policies or workflows call it
// before doing anything.
func (r *RunContext) RequireRepository() error {
	if r.Organization == "" || r.Repository == "" {
		return errors.New("github organization and repository are not configured and could not be discovered from the origin remote")
	}
	return nil
}

// RoleARN builds the ARN of an IAM role in the run's account.
func (r *RunContext) RoleARN(name string) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", r.AccountID, name)
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	Run      *RunContext
	State    *State
	Infra    aws.InfrastructureManager
	Observer Observer
	Timeouts *config.Timeouts
}

// NewContext creates a new provisioning context.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	run *RunContext,
	infra aws.InfrastructureManager,
) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Run:      run,
		State:    NewState(),
		Infra:    infra,
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
	}
}

// Record emits the event matching a reconcile outcome and adds it to the run
// summary. Every reconcile branch a phase takes goes through here.
func (c *Context) Record(phase, kind, key string, outcome aws.Outcome, detail string) {
	fields := map[string]string{"kind": kind}
	if detail != "" {
		fields["detail"] = detail
	}
	c.Observer.Event(Event{
		Type:     EventForOutcome(outcome),
		Phase:    phase,
		Resource: key,
		Message:  outcomeMessage(kind, outcome),
		Fields:   fields,
	})
	c.State.Summary.Record(kind, key, string(outcome), detail)
}

// RecordKept notes a shared resource that teardown deliberately leaves in
// place.
func (c *Context) RecordKept(phase, kind, key, reason string) {
	c.Observer.Event(Event{
		Type:     EventResourceKept,
		Phase:    phase,
		Resource: key,
		Message:  fmt.Sprintf("%s kept: %s", kind, reason),
		Fields:   map[string]string{"kind": kind},
	})
	c.State.Summary.Record(kind, key, "kept", reason)
}

// Warn emits a degraded-resource event and adds the warning to the summary
// without failing the run.
func (c *Context) Warn(phase, kind, key string, err error) {
	c.Observer.Event(Event{
		Type:     EventResourceDegraded,
		Phase:    phase,
		Resource: key,
		Message:  err.Error(),
		Fields:   map[string]string{"kind": kind},
	})
	c.State.Summary.Warn(err.Error())
}
