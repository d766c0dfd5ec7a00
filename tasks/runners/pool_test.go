package runners

import (
	"context"
	"testing"
	"time"

	taskErrors "task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

func TestPoolRunner_RunsEveryIndexExactlyOnce(t *testing.T) {
	list, h := countingList(50)
	sm, s := newStateManager()
	runner := NewPoolRunner(4, sm, logger.Discard())
	ctx := WithJobID(context.Background(), "pool")

	require.NoError(t, tasks.Submit(ctx, list, runner))

	for i := range 50 {
		assert.Equal(t, 1, h.get(i), "index %d", i)
	}

	invs, err := s.List(ctx, "pool")
	require.NoError(t, err)
	assert.Equal(t, 50, len(invs))
}

func TestPoolRunner_JoinsFailuresAndKeepsGoing(t *testing.T) {
	list, h := countingList(2)
	list.Append(func() { panic("boom") })
	list.Append(nil)

	sm, s := newStateManager()
	runner := NewPoolRunner(2, sm, logger.Discard())
	ctx := WithJobID(context.Background(), "pool-fail")

	err := tasks.Submit(ctx, list, runner)

	require.Error(t, err)
	assert.ErrorContains(t, err, "index 2")
	assert.ErrorContains(t, err, "task panicked: boom")
	assert.ErrorContains(t, err, "index 3")
	assert.Assert(t, taskErrors.IsType(err, taskErrors.ExecutionError))
	assert.Equal(t, 2, h.total())

	for _, i := range []int{2, 3} {
		inv, getErr := s.Get(ctx, "pool-fail", i)
		require.NoError(t, getErr)
		assert.Equal(t, tasks.StatusFailed, inv.Status)
	}
}

func TestPoolRunner_EmptyList(t *testing.T) {
	sm, _ := newStateManager()
	runner := NewPoolRunner(3, sm, logger.Discard())

	assert.NilError(t, tasks.Submit(context.Background(), tasks.NewTaskList(), runner))
}

func TestPoolRunner_InvalidWorkerCount(t *testing.T) {
	list, h := countingList(1)
	sm, _ := newStateManager()
	runner := NewPoolRunner(0, sm, logger.Discard())

	err := tasks.Submit(context.Background(), list, runner)

	assert.Assert(t, taskErrors.IsType(err, taskErrors.ValidationError))
	assert.Equal(t, 0, h.total())
}

func TestPoolRunner_CancelHonoursShutdownTimeout(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	list := tasks.NewTaskList(func() {
		close(started)
		<-release
	})
	defer close(release)

	sm, _ := newStateManager()
	runner := NewPoolRunner(1, sm, logger.Discard()).WithShutdownTimeout(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tasks.Submit(ctx, list, runner) }()

	<-started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("runner ignored the shutdown timeout")
	}
}
