// Package async contains generic helpers for running multiple operations
// concurrently and collecting their errors. The add-on stage uses it to
// reconcile independent add-ons over a bounded worker pool.
package async
