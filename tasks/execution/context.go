package execution

import (
	"fmt"
	"time"

	"task-dispatch/tasks"
)

// ExecutionContext tracks one invocation attempt for logging and persistence.
type ExecutionContext struct {
	Invocation *tasks.Invocation
	Error      error
	StartTime  time.Time
	EndTime    time.Time
	Metadata   map[string]any
}

// NewExecutionContext initializes tracking for a new invocation of index in jobID.
func NewExecutionContext(jobID string, index int) *ExecutionContext {
	return &ExecutionContext{
		Invocation: tasks.NewInvocation(jobID, index),
		StartTime:  time.Now(),
		Metadata:   make(map[string]any),
	}
}

// SetError captures failure details and ends the attempt.
func (ctx *ExecutionContext) SetError(err error) {
	ctx.Error = err
	ctx.EndTime = time.Now()
	ctx.Invocation.Error = err.Error()
	ctx.Metadata["has_error"] = true
	ctx.Metadata["error_type"] = fmt.Sprintf("%T", err)
}

// SetSuccess ends the attempt without error.
func (ctx *ExecutionContext) SetSuccess() {
	ctx.EndTime = time.Now()
	ctx.Metadata["has_error"] = false
}

// Duration is the elapsed time so far, or the final time once ended.
func (ctx *ExecutionContext) Duration() time.Duration {
	if ctx.EndTime.IsZero() {
		return time.Since(ctx.StartTime)
	}
	return ctx.EndTime.Sub(ctx.StartTime)
}
