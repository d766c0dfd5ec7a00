package workers

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/execution"
	"task-dispatch/tasks/queue"
)

// Target is what a worker invokes: the opaque list reference and the
// callback a runner received for it. When JobID is set, messages of any
// other job are rejected without being invoked.
type Target struct {
	JobID    string
	Ref      any
	Callback tasks.Callback
}

type Worker struct {
	id           int
	queue        queue.IndexQueue
	target       Target
	stateManager execution.StateManager
	logger       *logger.Logger
	report       func(error)
	stopCh       chan struct{}
	stopOnce     sync.Once
}

func NewWorker(id int, queue queue.IndexQueue, target Target, stateManager execution.StateManager, logger *logger.Logger) *Worker {
	return &Worker{
		id:           id,
		queue:        queue,
		target:       target,
		stateManager: stateManager,
		logger:       logger,
		report:       func(error) {},
		stopCh:       make(chan struct{}),
	}
}

// Start runs the processing loop until the context ends, Stop is called, or
// the queue reports it is closed or empty.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Debug("worker starting", map[string]any{
		"worker_id": w.id,
	})

	defer w.logger.Debug("worker stopped", map[string]any{
		"worker_id": w.id,
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
			if !w.processNext(ctx) {
				return
			}
		}
	}
}

// Stop signals the worker to stop gracefully
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// processNext handles one message and reports whether the loop should continue.
func (w *Worker) processNext(ctx context.Context) bool {
	msg, err := w.queue.Dequeue(ctx)
	if err != nil {
		if ctx.Err() != nil || stderrors.Is(err, queue.ErrQueueClosed) || stderrors.Is(err, queue.ErrQueueEmpty) {
			return false
		}

		w.logger.Error("failed to dequeue message", map[string]any{
			"worker_id": w.id,
			"error":     err.Error(),
		})
		return true
	}

	if w.target.JobID != "" && msg.JobID != w.target.JobID {
		w.logger.Error("rejected message of another job", map[string]any{
			"job_id":          msg.JobID,
			"expected_job_id": w.target.JobID,
			"index":           msg.Index,
			"worker_id":       w.id,
		})
		w.report(errors.NewValidationError("message belongs to another job", map[string]any{
			"job_id":          msg.JobID,
			"expected_job_id": w.target.JobID,
			"index":           msg.Index,
		}))
		return true
	}

	execCtx := execution.NewExecutionContext(msg.JobID, msg.Index)
	execCtx.Metadata["worker_id"] = w.id

	if err := w.stateManager.TransitionToRunning(ctx, execCtx); err != nil {
		w.logger.Error("failed to update invocation status to running", map[string]any{
			"job_id":    msg.JobID,
			"index":     msg.Index,
			"worker_id": w.id,
			"error":     err.Error(),
		})
		w.report(err)
		return true
	}

	if err := w.invoke(msg.Index); err != nil {
		w.handleFailure(ctx, execCtx, err)
		return true
	}

	w.handleSuccess(ctx, execCtx)
	return true
}

// invoke calls the target callback, turning a task panic into an execution
// error so one bad task cannot take down the pool.
func (w *Worker) invoke(index int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewExecutionError(fmt.Sprintf("task panicked: %v", r), map[string]any{
				"index":     index,
				"worker_id": w.id,
			})
		}
	}()
	return w.target.Callback(w.target.Ref, index)
}

func (w *Worker) handleSuccess(ctx context.Context, execCtx *execution.ExecutionContext) {
	execCtx.SetSuccess()
	if err := w.stateManager.TransitionToCompleted(ctx, execCtx); err != nil {
		w.logger.Error("failed to update invocation status to completed", map[string]any{
			"job_id":    execCtx.Invocation.JobID,
			"index":     execCtx.Invocation.Index,
			"worker_id": w.id,
			"error":     err.Error(),
		})
	}

	w.logger.Invocation(execCtx.Invocation.JobID, execCtx.Invocation.Index, "invocation completed", map[string]any{
		"worker_id":   w.id,
		"duration_ns": execCtx.Duration().Nanoseconds(),
	})
}

func (w *Worker) handleFailure(ctx context.Context, execCtx *execution.ExecutionContext, invokeErr error) {
	w.logger.Invocation(execCtx.Invocation.JobID, execCtx.Invocation.Index, "invocation failed", map[string]any{
		"worker_id": w.id,
		"error":     invokeErr.Error(),
	})

	execCtx.SetError(invokeErr)
	if err := w.stateManager.TransitionToFailed(ctx, execCtx); err != nil {
		w.logger.Error("failed to update invocation status to failed", map[string]any{
			"job_id":    execCtx.Invocation.JobID,
			"index":     execCtx.Invocation.Index,
			"worker_id": w.id,
			"error":     err.Error(),
		})
	}

	w.report(fmt.Errorf("index %d: %w", execCtx.Invocation.Index, invokeErr))
}
