//go:build integration

package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestRedisQueue_NewRedisQueue(t *testing.T) {
	queue, cleanup := setupRedisTestcontainer(t, time.Second)
	defer cleanup()

	assert.Assert(t, queue != nil)
	assert.Assert(t, len(queue.queueName) > 0)
	assert.Assert(t, queue.Client() != nil)
}

func TestRedisQueue_BasicOperations(t *testing.T) {
	queue, cleanup := setupRedisTestcontainer(t, time.Second)
	defer cleanup()

	testQueueBasicOperations(t, queue)
}

func TestRedisQueue_FIFOOrdering(t *testing.T) {
	queue, cleanup := setupRedisTestcontainer(t, time.Second)
	defer cleanup()

	testQueueFIFOOrdering(t, queue)
}

func TestRedisQueue_Concurrency(t *testing.T) {
	queue, cleanup := setupRedisTestcontainer(t, time.Second)
	defer cleanup()

	testQueueConcurrency(t, queue)
}

func TestRedisQueue_EmptyAfterBlockTimeout(t *testing.T) {
	queue, cleanup := setupRedisTestcontainer(t, time.Second)
	defer cleanup()

	start := time.Now()
	_, err := queue.Dequeue(context.Background())

	assert.Assert(t, errors.Is(err, ErrQueueEmpty))
	assert.Assert(t, time.Since(start) >= 900*time.Millisecond)
}

func TestRedisQueue_InvalidData(t *testing.T) {
	queue, cleanup := setupRedisTestcontainer(t, time.Second)
	defer cleanup()

	ctx := context.Background()
	assert.NilError(t, queue.client.LPush(ctx, queue.queueName, "not json").Err())

	_, err := queue.Dequeue(ctx)
	assert.ErrorContains(t, err, "failed to unmarshal message")
}

func TestRedisQueue_ConnectionErrors(t *testing.T) {
	_, err := NewRedisQueue("invalid://url", "test", time.Second)
	assert.ErrorContains(t, err, "invalid Redis URL")

	_, err = NewRedisQueue("redis://localhost:1/1", "test", time.Second)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestRedisQueue_NamedSharesConnection(t *testing.T) {
	base, cleanup := setupRedisTestcontainer(t, time.Second)
	defer cleanup()

	ctx := context.Background()
	hello := base.Named(base.queueName + ":hello")
	second := base.Named(base.queueName + ":second")
	defer base.client.Del(ctx, hello.queueName, second.queueName)

	assert.NilError(t, hello.Enqueue(ctx, NewIndexMessage("job-hello", 1)))
	assert.NilError(t, second.Enqueue(ctx, NewIndexMessage("job-second", 2)))

	msg, err := second.Dequeue(ctx)
	assert.NilError(t, err)
	assert.Equal(t, "job-second", msg.JobID)

	depth, err := hello.Depth(ctx)
	assert.NilError(t, err)
	assert.Equal(t, int64(1), depth)

	// closing a named queue keeps the shared connection usable
	assert.NilError(t, second.Close())
	assert.NilError(t, base.client.Ping(ctx).Err())
}
