// Package executor provides the worker pool that fans calculation tasks
// out over a bounded number of goroutines, cancelling the remaining work
// on the first failure.
package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
)

// Task is one unit of calculation work.
type Task struct {
	ID  string
	Run func(ctx context.Context) error
}

// Pool runs flat task lists on a fixed number of workers.
type Pool struct {
	numWorkers int
}

// New creates a pool. A non-positive worker count falls back to one.
func New(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{numWorkers: numWorkers}
}

// Run executes all tasks concurrently and returns the first real error.
// It respects the cancellation signal from the provided context; tasks
// not yet started when a failure occurs are skipped.
func (p *Pool) Run(ctx context.Context, tasks []*Task) error {
	logger := ctxlog.FromContext(ctx)
	if len(tasks) == 0 {
		return nil
	}

	readyChan := make(chan *Task, len(tasks))
	for _, t := range tasks {
		readyChan <- t
	}
	close(readyChan)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := p.numWorkers
	if workers > len(tasks) {
		workers = len(tasks)
	}
	logger.Debug("Starting worker pool.", "workers", workers, "tasks", len(tasks))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		failedID string
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			p.worker(runCtx, readyChan, cancel, workerID, func(t *Task, err error) {
				mu.Lock()
				defer mu.Unlock()
				if firstErr == nil {
					firstErr = err
					failedID = t.ID
				}
			})
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("execution failed for %s: %w", failedID, firstErr)
	}
	return nil
}

// worker is the core processing loop for a single concurrent worker.
func (p *Pool) worker(ctx context.Context, readyChan <-chan *Task, cancel context.CancelFunc, workerID int, fail func(*Task, error)) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for t := range readyChan {
		if ctx.Err() != nil {
			logger.Debug("Skipping task after cancellation.", "workerID", workerID, "taskID", t.ID)
			continue
		}
		workerLogger := logger.With("workerID", workerID, "taskID", t.ID)
		workerLogger.Debug("Worker picked up task.")

		if err := t.Run(ctx); err != nil {
			workerLogger.Error("Task failed.", "error", err)
			fail(t, err)
			cancel()
			continue
		}
		workerLogger.Debug("Task succeeded.")
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
