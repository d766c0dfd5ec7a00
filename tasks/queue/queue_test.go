package queue

import (
	"context"
	"sync"
	"testing"

	"gotest.tools/v3/assert"
)

// Test helper for common queue operations
func testQueueBasicOperations(t *testing.T, queue IndexQueue) {
	ctx := context.Background()

	original := NewIndexMessage("job-basic", 7)

	err := queue.Enqueue(ctx, original)
	assert.NilError(t, err, "Failed to enqueue message")

	depth, err := queue.Depth(ctx)
	assert.NilError(t, err, "Failed to get queue depth")
	assert.Equal(t, int64(1), depth, "Queue depth should be 1 after enqueue")

	dequeued, err := queue.Dequeue(ctx)
	assert.NilError(t, err, "Failed to dequeue message")
	assert.Assert(t, dequeued != nil)
	assert.Equal(t, original.JobID, dequeued.JobID)
	assert.Equal(t, original.Index, dequeued.Index)
	assert.Assert(t, original.EnqueuedAt.Equal(dequeued.EnqueuedAt))

	depth, err = queue.Depth(ctx)
	assert.NilError(t, err)
	assert.Equal(t, int64(0), depth, "Queue should be empty after dequeue")
}

func testQueueFIFOOrdering(t *testing.T, queue IndexQueue) {
	ctx := context.Background()

	for i := range 3 {
		assert.NilError(t, queue.Enqueue(ctx, NewIndexMessage("job-fifo", i)))
	}

	depth, err := queue.Depth(ctx)
	assert.NilError(t, err)
	assert.Equal(t, int64(3), depth)

	for i := range 3 {
		msg, err := queue.Dequeue(ctx)
		assert.NilError(t, err, "Failed to dequeue message %d", i)
		assert.Equal(t, i, msg.Index, "FIFO order violated at position %d", i)
	}
}

func testQueueConcurrency(t *testing.T, queue IndexQueue) {
	ctx := context.Background()
	const producers, perProducer = 4, 25

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				assert.Check(t, queue.Enqueue(ctx, NewIndexMessage("job-conc", p*perProducer+i)))
			}
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	var mu sync.Mutex
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				msg, err := queue.Dequeue(ctx)
				if !assert.Check(t, err) {
					return
				}
				mu.Lock()
				seen[msg.Index] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, len(seen))
}
