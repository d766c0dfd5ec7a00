package store

import (
	"context"
	"errors"

	"task-dispatch/tasks"
)

// ErrNotFound is returned when no invocation is recorded for a job and index.
var ErrNotFound = errors.New("invocation not found")

// InvocationStore defines the contract for invocation persistence
type InvocationStore interface {
	Save(ctx context.Context, inv *tasks.Invocation) error
	Get(ctx context.Context, jobID string, index int) (*tasks.Invocation, error)
	Update(ctx context.Context, inv *tasks.Invocation) error
	List(ctx context.Context, jobID string) ([]*tasks.Invocation, error)
}
