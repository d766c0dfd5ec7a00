package runners

import (
	"bytes"
	"context"
	"strings"
	"testing"

	taskErrors "task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/handlers"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

func TestArrayJobRunner_TwoSubmissionsInOneProcess(t *testing.T) {
	var out bytes.Buffer
	sm, _ := newStateManager()
	runner := NewArrayJobRunner(strings.NewReader("3\n2\n"), &out, sm, logger.Discard())
	ctx := context.Background()

	require.NoError(t, tasks.Submit(ctx, handlers.HelloWorld(&out, 10)(), runner))
	require.NoError(t, tasks.Submit(ctx, handlers.SecondJob(&out, 5)(), runner))

	want := "TUTHPCLIB4D:submit:10\n" +
		"Hello, world!: 3\n" +
		"TUTHPCLIB4D:submit:5\n" +
		"This is the 2nd job: 2\n"
	assert.Equal(t, want, out.String())
}

func TestArrayJobRunner_InvokesOnlySelectedIndex(t *testing.T) {
	list, h := countingList(10)
	sm, s := newStateManager()
	var out bytes.Buffer
	runner := NewArrayJobRunner(strings.NewReader(" 5 "), &out, sm, logger.Discard())
	ctx := WithJobID(context.Background(), "array")

	require.NoError(t, tasks.Submit(ctx, list, runner))

	assert.Equal(t, 1, h.total())
	assert.Equal(t, 1, h.get(5))

	inv, err := s.Get(ctx, "array", 5)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusDone, inv.Status)
}

func TestArrayJobRunner_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		wantType taskErrors.TaskErrorType
	}{
		{"out of range", "10\n", taskErrors.OutOfRangeError},
		{"negative", "-1\n", taskErrors.OutOfRangeError},
		{"not a number", "five\n", taskErrors.ValidationError},
		{"no input", "", taskErrors.ValidationError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			list, h := countingList(10)
			sm, _ := newStateManager()
			var out bytes.Buffer
			runner := NewArrayJobRunner(strings.NewReader(tc.input), &out, sm, logger.Discard())

			err := tasks.Submit(context.Background(), list, runner)

			assert.Assert(t, taskErrors.IsType(err, tc.wantType), "got %v", err)
			assert.Equal(t, 0, h.total())
			assert.Equal(t, "TUTHPCLIB4D:submit:10\n", out.String())
		})
	}
}

func TestArrayJobRunner_CancelledContextAnnouncesNothing(t *testing.T) {
	var out bytes.Buffer
	sm, _ := newStateManager()
	runner := NewArrayJobRunner(strings.NewReader("0"), &out, sm, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tasks.Submit(ctx, tasks.NewTaskList(func() {}), runner)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "", out.String())
}
