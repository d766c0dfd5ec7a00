package execution

import (
	"context"
	"fmt"

	"task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"
)

// Tracker wraps a callback so every invocation it makes is recorded.
type Tracker struct {
	stateManager StateManager
	logger       *logger.Logger
}

func NewTracker(stateManager StateManager, logger *logger.Logger) *Tracker {
	return &Tracker{
		stateManager: stateManager,
		logger:       logger,
	}
}

// Wrap returns a callback that records running, done or failed around each
// call of callback. A panicking task is recorded as failed and the panic is
// raised again, so the caller's own panic policy still applies.
func (t *Tracker) Wrap(ctx context.Context, jobID string, callback tasks.Callback) tasks.Callback {
	return func(ref any, index int) error {
		execCtx := NewExecutionContext(jobID, index)

		if err := t.stateManager.TransitionToRunning(ctx, execCtx); err != nil {
			return err
		}

		defer func() {
			if r := recover(); r != nil {
				t.fail(ctx, execCtx, errors.NewExecutionError(fmt.Sprintf("task panicked: %v", r), map[string]any{
					"job_id": jobID,
					"index":  index,
				}))
				panic(r)
			}
		}()

		if err := callback(ref, index); err != nil {
			t.fail(ctx, execCtx, err)
			return err
		}

		execCtx.SetSuccess()
		if err := t.stateManager.TransitionToCompleted(ctx, execCtx); err != nil {
			t.logger.Error("failed to transition invocation to completed state after successful execution", map[string]any{
				"job_id": jobID,
				"index":  index,
				"error":  err.Error(),
			})
		}

		t.logger.Invocation(jobID, index, "invocation completed", map[string]any{
			"status":      execCtx.Invocation.Status.String(),
			"duration_ns": execCtx.Duration().Nanoseconds(),
		})
		return nil
	}
}

func (t *Tracker) fail(ctx context.Context, execCtx *ExecutionContext, err error) {
	inv := execCtx.Invocation
	t.logger.Invocation(inv.JobID, inv.Index, "invocation failed", map[string]any{
		"error": err.Error(),
	})

	execCtx.SetError(err)
	if transitionErr := t.stateManager.TransitionToFailed(ctx, execCtx); transitionErr != nil {
		t.logger.Error("failed to transition invocation to failed state", map[string]any{
			"job_id":           inv.JobID,
			"index":            inv.Index,
			"transition_error": transitionErr.Error(),
			"original_error":   err.Error(),
		})
	}
}
