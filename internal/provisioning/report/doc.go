// Package report archives the finished run summary as a JSON object in the
// report bucket. The bucket is ensured on first use and survives teardown,
// so the account keeps a history of every provision and teardown run.
package report
