package runners

import (
	"context"
	"fmt"
	"time"

	"task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/execution"
	"task-dispatch/tasks/queue"
	"task-dispatch/tasks/workers"
)

// Role selects which half of the distributed hand-off a process performs.
type Role string

const (
	RoleProducer Role = "producer"
	RoleWorker   Role = "worker"
	RoleAll      Role = "all"
)

// Roles lists every valid role.
var Roles = []Role{RoleProducer, RoleWorker, RoleAll}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool { return r.produces() || r.consumes() }

// RunsWorkers reports whether a process in role r consumes the queue.
func (r Role) RunsWorkers() bool { return r.consumes() }

func (r Role) produces() bool { return r == RoleProducer || r == RoleAll }
func (r Role) consumes() bool { return r == RoleWorker || r == RoleAll }

// QueueFor returns the queue carrying the indices of the named job. Each job
// needs its own queue so a worker only ever pops indices of the list it
// was handed.
type QueueFor func(jobName string) queue.IndexQueue

// DistributedRunner fans indices out through shared queues. Every process
// must build the same task list under the same job name and job ID, since
// only indices cross the wire.
type DistributedRunner struct {
	queues          QueueFor
	role            Role
	workerCount     int
	shutdownTimeout time.Duration
	stateManager    execution.StateManager
	logger          *logger.Logger
}

// NewDistributedRunner consumes with workerCount workers when role includes
// the worker side. Workers exit once the queue reports it is empty or closed.
func NewDistributedRunner(
	queues QueueFor,
	role Role,
	workerCount int,
	stateManager execution.StateManager,
	lg *logger.Logger,
) *DistributedRunner {
	return &DistributedRunner{
		queues:       queues,
		role:         role,
		workerCount:  workerCount,
		stateManager: stateManager,
		logger:       lg,
	}
}

// WithShutdownTimeout bounds how long a cancelled submission waits for
// running tasks.
func (r *DistributedRunner) WithShutdownTimeout(d time.Duration) *DistributedRunner {
	r.shutdownTimeout = d
	return r
}

func (r *DistributedRunner) RunTasks(ctx context.Context, ref any, size int, callback tasks.Callback) error {
	if !r.role.Valid() {
		return errors.NewValidationError(fmt.Sprintf("unknown distributed role %q", r.role))
	}

	jobID := JobID(ctx)
	jobName := JobName(ctx)
	q := r.queues(jobName)

	if r.role.produces() {
		if err := r.produce(ctx, q, jobID, jobName, size); err != nil {
			return err
		}
	}

	if r.role.consumes() {
		return r.consume(ctx, q, jobID, ref, callback)
	}
	return nil
}

func (r *DistributedRunner) produce(ctx context.Context, q queue.IndexQueue, jobID, jobName string, size int) error {
	for i := range size {
		if err := q.Enqueue(ctx, queue.NewIndexMessage(jobID, i)); err != nil {
			return errors.NewExecutionError("failed to enqueue index", map[string]any{
				"job_id": jobID,
				"index":  i,
				"error":  err.Error(),
			})
		}
	}

	r.logger.Info("job published", map[string]any{
		"job_id":   jobID,
		"job_name": jobName,
		"size":     size,
	})
	return nil
}

func (r *DistributedRunner) consume(ctx context.Context, q queue.IndexQueue, jobID string, ref any, callback tasks.Callback) error {
	if r.workerCount < 1 {
		return errors.NewValidationError("worker count must be at least 1", map[string]any{
			"worker_count": r.workerCount,
		})
	}

	target := workers.Target{JobID: jobID, Ref: ref, Callback: callback}
	pool := workers.NewWorkerPool(r.workerCount, q, target, r.stateManager, r.logger)
	return runPool(ctx, pool, r.shutdownTimeout)
}
