// Package async provides helpers for running independent operations concurrently.
package async

import (
	"context"
	"fmt"
)

// Task is a named unit of concurrent work.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes tasks concurrently, at most limit at a time (limit <= 0
// means unbounded), waits for all of them to finish, and returns the first
// error encountered. Later errors are dropped; tasks that must report
// individual outcomes collect them on their own.
func RunParallel(ctx context.Context, limit int, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))

	var sem chan struct{}
	if limit > 0 {
		sem = make(chan struct{}, limit)
	}

	for _, task := range tasks {
		go func() {
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			resultChan <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var firstErr error
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", res.name, res.err)
		}
	}
	return firstErr
}
