package execution

import (
	"errors"
	"testing"
	"time"

	"task-dispatch/tasks"

	"github.com/stretchr/testify/assert"
)

func TestNewExecutionContext(t *testing.T) {
	ctx := NewExecutionContext("job", 4)

	assert.Equal(t, "job", ctx.Invocation.JobID)
	assert.Equal(t, 4, ctx.Invocation.Index)
	assert.Equal(t, tasks.StatusSubmitted, ctx.Invocation.Status)
	assert.False(t, ctx.StartTime.IsZero())
	assert.True(t, ctx.EndTime.IsZero())
	assert.NotNil(t, ctx.Metadata)
}

func TestExecutionContext_SetError(t *testing.T) {
	ctx := NewExecutionContext("job", 0)

	ctx.SetError(errors.New("boom"))

	assert.Error(t, ctx.Error, "boom")
	assert.Equal(t, "boom", ctx.Invocation.Error)
	assert.Equal(t, true, ctx.Metadata["has_error"])
	assert.Equal(t, "*errors.errorString", ctx.Metadata["error_type"])
	assert.False(t, ctx.EndTime.IsZero())
}

func TestExecutionContext_SetSuccessAndDuration(t *testing.T) {
	ctx := NewExecutionContext("job", 0)
	time.Sleep(time.Millisecond)

	ctx.SetSuccess()

	assert.NoError(t, ctx.Error)
	assert.Equal(t, false, ctx.Metadata["has_error"])
	assert.Equal(t, ctx.EndTime.Sub(ctx.StartTime), ctx.Duration())
	assert.GreaterOrEqual(t, ctx.Duration(), time.Millisecond)
}
