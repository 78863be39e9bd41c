package aws

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// EnsureReportBucket creates the run-report bucket on first use. The
// bucket is shared across runs and clusters; it is never deleted.
func (c *RealClient) EnsureReportBucket(ctx context.Context, name string) (Outcome, error) {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err == nil {
		return OutcomePresent, nil
	}
	if !IsNotFound(err) {
		return "", &ProbeError{Kind: "report bucket", Key: name, Err: err}
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 rejects an explicit location constraint.
	if c.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(c.region),
		}
	}
	if _, err := c.s3.CreateBucket(ctx, input); err != nil {
		if IsAlreadyExists(err) {
			return OutcomePresent, nil
		}
		return "", &ConvergenceError{Kind: "report bucket", Key: name, Action: "create", Err: err}
	}
	return OutcomeCreated, nil
}

// PutReport stores one run summary document.
func (c *RealClient) PutReport(ctx context.Context, bucket, key string, body []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("storing report %s/%s: %w", bucket, key, err)
	}
	return nil
}
