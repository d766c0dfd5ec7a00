package runners

import (
	"context"
	"fmt"

	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/execution"
)

// SequentialRunner invokes every index in order on the calling goroutine.
type SequentialRunner struct {
	tracker *execution.Tracker
	logger  *logger.Logger
}

func NewSequentialRunner(stateManager execution.StateManager, lg *logger.Logger) *SequentialRunner {
	return &SequentialRunner{
		tracker: execution.NewTracker(stateManager, lg),
		logger:  lg,
	}
}

// RunTasks stops at the first failing index or when ctx ends.
func (r *SequentialRunner) RunTasks(ctx context.Context, ref any, size int, callback tasks.Callback) error {
	jobID := JobID(ctx)
	invoke := r.tracker.Wrap(ctx, jobID, callback)

	r.logger.Info("running job sequentially", map[string]any{
		"job_id": jobID,
		"size":   size,
	})

	for i := range size {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := invoke(ref, i); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}
