package queue

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrQueueClosed is returned by Dequeue once a closed queue is drained,
	// and by Enqueue after Close.
	ErrQueueClosed = errors.New("queue closed")

	// ErrQueueEmpty is returned by Dequeue when nothing arrived within the
	// queue's block timeout.
	ErrQueueEmpty = errors.New("queue empty")
)

// IndexMessage asks a worker to invoke one index of a job.
type IndexMessage struct {
	JobID      string    `json:"job_id"`
	Index      int       `json:"index"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewIndexMessage stamps a message for index of jobID.
func NewIndexMessage(jobID string, index int) IndexMessage {
	return IndexMessage{
		JobID:      jobID,
		Index:      index,
		EnqueuedAt: time.Now().UTC(),
	}
}

// IndexQueue carries index messages from a producer to workers
type IndexQueue interface {
	// Enqueue adds a message to the tail of the queue
	Enqueue(ctx context.Context, msg IndexMessage) error

	// Dequeue removes and returns the message at the head of the queue, blocking until one is available
	Dequeue(ctx context.Context) (*IndexMessage, error)

	// Depth returns the number of messages waiting in queue
	Depth(ctx context.Context) (int64, error)

	// Close cleanly shuts down the queue
	Close() error
}
