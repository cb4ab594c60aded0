// Package batch fans independent engine requests out over a bounded worker
// pool. The engine itself is single-threaded per request; running requests
// concurrently against the same immutable snapshot is the caller's choice,
// and this runner is that caller.
package batch

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Task is one independent unit of work.
type Task func(ctx context.Context) error

// Runner executes task slices with bounded parallelism.
type Runner struct {
	workers int
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithWorkers sets the pool size.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a Runner defaulting to one worker per CPU.
func New(opts ...Option) *Runner {
	r := &Runner{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes all tasks and blocks until they finish. The first failure
// cancels the remaining tasks; all collected errors are joined.
func (r *Runner) Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Task)
	errCh := make(chan error, len(tasks))
	var wg sync.WaitGroup

	workers := r.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				if ctx.Err() != nil {
					return
				}
				if err := task(ctx); err != nil {
					errCh <- err
					cancel()
				}
			}
		}()
	}

	for _, t := range tasks {
		select {
		case jobs <- t:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
