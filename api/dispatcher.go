package api

import (
	"context"

	"task-dispatch/tasks"
)

// Dispatcher is the submitted job an HTTP runner exposes to remote callers.
type Dispatcher interface {
	JobID() string
	Size() int
	// Invoke runs index once and returns the callback's error
	Invoke(ctx context.Context, index int) error
	// Invocation returns the recorded state of index, or store.ErrNotFound
	Invocation(ctx context.Context, index int) (*tasks.Invocation, error)
}

// JobLister names the jobs this process can build.
type JobLister interface {
	GetRegisteredJobs() []string
}
