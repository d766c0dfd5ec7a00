package runners

import (
	"context"
	"time"

	"task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/execution"
	"task-dispatch/tasks/queue"
	"task-dispatch/tasks/workers"
)

// PoolRunner spreads the indices of a job over a fixed number of workers in
// this process.
type PoolRunner struct {
	workerCount     int
	shutdownTimeout time.Duration
	stateManager    execution.StateManager
	logger          *logger.Logger
}

func NewPoolRunner(workerCount int, stateManager execution.StateManager, lg *logger.Logger) *PoolRunner {
	return &PoolRunner{
		workerCount:  workerCount,
		stateManager: stateManager,
		logger:       lg,
	}
}

// WithShutdownTimeout bounds how long a cancelled submission waits for
// running tasks.
func (r *PoolRunner) WithShutdownTimeout(d time.Duration) *PoolRunner {
	r.shutdownTimeout = d
	return r
}

// RunTasks invokes every index once and returns the joined errors of the
// failed ones. A panicking task is recorded as a failure.
func (r *PoolRunner) RunTasks(ctx context.Context, ref any, size int, callback tasks.Callback) error {
	if r.workerCount < 1 {
		return errors.NewValidationError("worker count must be at least 1", map[string]any{
			"worker_count": r.workerCount,
		})
	}
	if size == 0 {
		return nil
	}

	jobID := JobID(ctx)
	q := queue.NewMemoryQueue(size)
	for i := range size {
		if err := q.Enqueue(ctx, queue.NewIndexMessage(jobID, i)); err != nil {
			return err
		}
	}
	// workers drain what is queued, then exit
	q.Close()

	target := workers.Target{JobID: jobID, Ref: ref, Callback: callback}
	pool := workers.NewWorkerPool(r.workerCount, q, target, r.stateManager, r.logger)

	r.logger.Info("running job on worker pool", map[string]any{
		"job_id":       jobID,
		"size":         size,
		"worker_count": pool.GetWorkerCount(),
	})

	return runPool(ctx, pool, r.shutdownTimeout)
}
