package report

import (
	"fmt"
	"time"

	"github.com/ekstrap/ekstrap/internal/provisioning"
	"github.com/ekstrap/ekstrap/internal/util/naming"
)

// Provisioner uploads the run summary to the report bucket.
type Provisioner struct {
	// now stamps the report object key. Tests pin it.
	now func() time.Time
}

// NewProvisioner creates a new report provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{now: time.Now}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "report"
}

// Provision finishes the run summary and uploads it as JSON. The phase is
// skipped entirely when reporting is disabled. Runs at the end of both
// provisioning and teardown, so teardown runs leave a report too.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if !ctx.Config.Report.Enabled {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventPhaseSkipped,
			Phase:   p.Name(),
			Message: "reporting disabled",
		})
		return nil
	}

	bucket := ctx.Config.Report.Bucket
	if bucket == "" {
		bucket = naming.ReportBucket(ctx.Config.ClusterName, ctx.Run.AccountID)
	}

	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "report bucket", bucket)
	outcome, err := ctx.Infra.EnsureReportBucket(ctx, bucket)
	if err != nil {
		return err
	}
	ctx.Record(p.Name(), "report bucket", bucket, outcome, "")

	summary := ctx.State.Summary
	summary.Finish()
	body, err := summary.JSON()
	if err != nil {
		return err
	}

	operation := summary.Operation
	if operation == "" {
		operation = "run"
	}
	key := fmt.Sprintf("%s/%s-%s.json", ctx.Config.ClusterName, operation, p.now().UTC().Format("20060102T150405Z"))
	if err := ctx.Infra.PutReport(ctx, bucket, key, body); err != nil {
		return fmt.Errorf("uploading run report: %w", err)
	}
	ctx.Observer.Printf("run report uploaded to s3://%s/%s", bucket, key)

	return nil
}
