// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay, and maximum delay. Convergence calls against the
// AWS APIs use it to ride out throttling; errors wrapped with [Fatal] stop
// the loop immediately.
package retry
