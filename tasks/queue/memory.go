package queue

import (
	"context"
	"sync"
)

var _ IndexQueue = (*MemoryQueue)(nil)

// MemoryQueue is a bounded in-process FIFO backed by a channel.
type MemoryQueue struct {
	mu     sync.RWMutex
	ch     chan IndexMessage
	closed bool
}

// NewMemoryQueue creates a queue holding at most capacity messages.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryQueue{ch: make(chan IndexMessage, capacity)}
}

// Enqueue blocks while the queue is full.
func (q *MemoryQueue) Enqueue(ctx context.Context, msg IndexMessage) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue keeps returning buffered messages after Close, then ErrQueueClosed.
func (q *MemoryQueue) Dequeue(ctx context.Context) (*IndexMessage, error) {
	select {
	case msg, ok := <-q.ch:
		if !ok {
			return nil, ErrQueueClosed
		}
		return &msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Depth(_ context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}

// Close stops accepting messages. It is safe to call more than once.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	return nil
}
