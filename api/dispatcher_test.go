package api

import (
	"context"
	"sync"

	"task-dispatch/errors"
	"task-dispatch/tasks"
	"task-dispatch/tasks/store"
)

// fakeDispatcher runs indices against an in-memory record of calls.
type fakeDispatcher struct {
	mu      sync.Mutex
	size    int
	invoked []int
	failOn  map[int]error
	records map[int]*tasks.Invocation
}

func newFakeDispatcher(size int) *fakeDispatcher {
	return &fakeDispatcher{
		size:    size,
		failOn:  map[int]error{},
		records: map[int]*tasks.Invocation{},
	}
}

func (f *fakeDispatcher) JobID() string { return "job-1" }
func (f *fakeDispatcher) Size() int     { return f.size }

func (f *fakeDispatcher) Invoke(_ context.Context, index int) error {
	if index < 0 || index >= f.size {
		return errors.NewOutOfRangeError(index, f.size)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoked = append(f.invoked, index)

	inv := tasks.NewInvocation(f.JobID(), index)
	_ = inv.SetStatus(tasks.StatusRunning)
	if err, ok := f.failOn[index]; ok {
		inv.Error = err.Error()
		_ = inv.SetStatus(tasks.StatusFailed)
		f.records[index] = inv
		return err
	}
	_ = inv.SetStatus(tasks.StatusDone)
	f.records[index] = inv
	return nil
}

func (f *fakeDispatcher) Invocation(_ context.Context, index int) (*tasks.Invocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.records[index]
	if !ok {
		return nil, store.ErrNotFound
	}
	return inv, nil
}

type staticJobs []string

func (s staticJobs) GetRegisteredJobs() []string { return s }
