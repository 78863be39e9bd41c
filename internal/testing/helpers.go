package testing

import (
	"context"
	"testing"
	"time"

	"github.com/ekstrap/ekstrap/internal/config"
	"github.com/ekstrap/ekstrap/internal/platform/aws"
	"github.com/ekstrap/ekstrap/internal/provisioning"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// NewProvisioningContext builds a provisioning context wired to infra, with
// test timeouts, a recording observer, and run identity taken from cfg.
func NewProvisioningContext(t *testing.T, cfg *config.Config, infra aws.InfrastructureManager) (*provisioning.Context, *RecordingObserver) {
	t.Helper()
	observer := NewRecordingObserver()
	run := &provisioning.RunContext{
		AccountID:    "111122223333",
		Region:       cfg.Region,
		Organization: cfg.GitHub.Organization,
		Repository:   cfg.GitHub.Repository,
		Branch:       cfg.GitHub.Branch,
	}
	ctx := provisioning.NewContext(TestContext(t), cfg, run, infra)
	ctx.Observer = observer
	ctx.Timeouts = config.TestTimeouts()
	return ctx, observer
}
