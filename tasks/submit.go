package tasks

import (
	"context"
	"fmt"

	"task-dispatch/errors"
)

// Callback resolves index against the list behind ref and runs that task.
type Callback func(ref any, index int) error

// Runner decides which indices of a handed-off list run, when, and on which
// goroutines. It receives the list only as an opaque reference together with
// its size, and drives execution through callback.
//
// A Runner may call callback zero or more times, in any order and from any
// goroutine. Indices outside [0, size) come back as out_of_range errors.
type Runner interface {
	RunTasks(ctx context.Context, ref any, size int, callback Callback) error
}

// Submit hands list to runner. The list must not be modified afterwards.
func Submit(ctx context.Context, list *TaskList, runner Runner) error {
	if list == nil {
		return errors.NewValidationError("task list is nil")
	}
	if runner == nil {
		return errors.NewValidationError("runner is nil")
	}
	return runner.RunTasks(ctx, list, list.Size(), InvokeCallback)
}

// InvokeCallback is the Callback passed by Submit. It turns an opaque list
// reference and an index back into TaskList.Invoke.
func InvokeCallback(ref any, index int) error {
	list, ok := ref.(*TaskList)
	if !ok || list == nil {
		return errors.NewInternalError(fmt.Sprintf("unexpected task list reference %T", ref))
	}
	return list.Invoke(index)
}
