package aws

import (
	"errors"
	"fmt"

	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ProbeError reports an existence check that could not produce a reliable
// absence/presence answer. It is fatal and never retried: converging on a
// guessed read risks duplicate or conflicting resources.
type ProbeError struct {
	Kind string
	Key  string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s %q: %v", e.Kind, e.Key, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// ConvergenceError reports a failed create, repair, or delete call.
type ConvergenceError struct {
	Kind   string
	Key    string
	Action string
	Err    error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Action, e.Kind, e.Key, e.Err)
}

func (e *ConvergenceError) Unwrap() error {
	return e.Err
}

// apiErrorCode extracts the provider error code, empty when err is not an
// API error.
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func hasErrorCode(err error, codes ...string) bool {
	code := apiErrorCode(err)
	if code == "" {
		return false
	}
	for _, c := range codes {
		if code == c {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is the provider's absence idiom. Absence
// surfaces two ways across the services: typed not-found exceptions (EKS,
// ECR, IAM, S3) and EC2 error codes of the *.NotFound family. Probes
// normalize every one of them to a nil descriptor.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var (
		eksNotFound    *ekstypes.ResourceNotFoundException
		ecrNotFound    *ecrtypes.RepositoryNotFoundException
		iamNotFound    *iamtypes.NoSuchEntityException
		s3NoSuchBucket *s3types.NoSuchBucket
		s3NotFound     *s3types.NotFound
	)
	if errors.As(err, &eksNotFound) ||
		errors.As(err, &ecrNotFound) ||
		errors.As(err, &iamNotFound) ||
		errors.As(err, &s3NoSuchBucket) ||
		errors.As(err, &s3NotFound) {
		return true
	}

	switch code := apiErrorCode(err); code {
	case "InvalidVpcID.NotFound",
		"InvalidSubnetID.NotFound",
		"InvalidGroup.NotFound",
		"InvalidInternetGatewayID.NotFound",
		"InvalidRouteTableID.NotFound",
		"InvalidAssociationID.NotFound",
		"InvalidRoute.NotFound",
		"ResourceNotFoundException",
		"NoSuchEntity",
		"NotFoundException",
		"NotFound",
		"NoSuchBucket",
		"404":
		return true
	}
	return false
}

// IsAlreadyExists reports whether a create collided with an existing
// resource. Creates after a positive absence probe treat this as a lost
// race, not success.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	var (
		iamExists *iamtypes.EntityAlreadyExistsException
		ecrExists *ecrtypes.RepositoryAlreadyExistsException
		eksInUse  *ekstypes.ResourceInUseException
		s3Owned   *s3types.BucketAlreadyOwnedByYou
	)
	if errors.As(err, &iamExists) ||
		errors.As(err, &ecrExists) ||
		errors.As(err, &eksInUse) ||
		errors.As(err, &s3Owned) {
		return true
	}

	return hasErrorCode(err,
		"EntityAlreadyExists",
		"AlreadyExistsException",
		"InvalidPermission.Duplicate",
		"BucketAlreadyOwnedByYou",
	)
}

// IsRetryable reports whether a mutating call may be retried: throttling,
// and the settling window where a dependent resource is still releasing
// (DependencyViolation on network deletes, ResourceInUse while a nodegroup
// drains).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var eksInUse *ekstypes.ResourceInUseException
	if errors.As(err, &eksInUse) {
		return true
	}

	return hasErrorCode(err,
		"Throttling",
		"ThrottlingException",
		"RequestLimitExceeded",
		"TooManyRequestsException",
		"DependencyViolation",
	)
}
