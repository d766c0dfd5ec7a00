package registry

import (
	"slices"
	"sync"

	"task-dispatch/tasks"
)

// Builder constructs a fresh task list for a job.
type Builder func() *tasks.TaskList

// JobRegistry maps job names to the builders that produce their task lists.
// Every process of a distributed run resolves the same name to the same
// list, which is what makes indices meaningful across processes.
type JobRegistry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry constructs a new job registry.
func NewRegistry() *JobRegistry {
	return &JobRegistry{
		builders: make(map[string]Builder),
	}
}

// Register binds a builder to a job name.
// This should be called during application initialization.
func (r *JobRegistry) Register(name string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.builders[name] = builder
}

// Get returns the builder registered for name.
// If no builder is registered, ok will be false.
func (r *JobRegistry) Get(name string) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.builders[name]
	return b, ok
}

// GetRegisteredJobs returns all registered job names, sorted.
func (r *JobRegistry) GetRegisteredJobs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
