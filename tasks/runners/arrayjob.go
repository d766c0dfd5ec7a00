package runners

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/execution"
)

// SubmitPrefix starts the line that announces a job to the array-job launcher.
const SubmitPrefix = "TUTHPCLIB4D:submit:"

// ArrayJobRunner speaks the array-job protocol: each submission writes
// "TUTHPCLIB4D:submit:<size>" on its own line, then reads the index this
// process should run. The launcher starts one process per array element, so
// every process invokes exactly one index per submission.
type ArrayJobRunner struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	tracker *execution.Tracker
	logger  *logger.Logger
}

// NewArrayJobRunner reads indices from in and announces jobs on out. Successive
// submissions read successive integers from in.
func NewArrayJobRunner(in io.Reader, out io.Writer, stateManager execution.StateManager, lg *logger.Logger) *ArrayJobRunner {
	return &ArrayJobRunner{
		in:      bufio.NewReader(in),
		out:     out,
		tracker: execution.NewTracker(stateManager, lg),
		logger:  lg,
	}
}

func (r *ArrayJobRunner) RunTasks(ctx context.Context, ref any, size int, callback tasks.Callback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	index, err := r.announce(size)
	if err != nil {
		return err
	}

	jobID := JobID(ctx)
	r.logger.Info("array job element selected", map[string]any{
		"job_id": jobID,
		"size":   size,
		"index":  index,
	})

	return r.tracker.Wrap(ctx, jobID, callback)(ref, index)
}

// announce writes the submit line and reads back the selected index.
func (r *ArrayJobRunner) announce(size int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := fmt.Fprintf(r.out, "%s%d\n", SubmitPrefix, size); err != nil {
		return 0, fmt.Errorf("failed to announce job: %w", err)
	}

	var index int
	if _, err := fmt.Fscan(r.in, &index); err != nil {
		return 0, errors.NewValidationError("failed to read task index", map[string]any{
			"error": err.Error(),
		})
	}
	return index, nil
}
