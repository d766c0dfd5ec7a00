package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"task-dispatch/tasks"
)

// Compile-time check to ensure MemoryStore implements InvocationStore interface
var _ InvocationStore = (*MemoryStore)(nil)

type invocationKey struct {
	jobID string
	index int
}

// MemoryStore provides an in-memory implementation of invocation persistence.
type MemoryStore struct {
	mu          sync.RWMutex
	invocations map[invocationKey]*tasks.Invocation
}

// NewMemoryStore creates and initializes a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invocations: make(map[invocationKey]*tasks.Invocation),
	}
}

// Save records a new invocation. A job may record each index only once.
func (s *MemoryStore) Save(_ context.Context, inv *tasks.Invocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := invocationKey{inv.JobID, inv.Index}
	if _, exists := s.invocations[key]; exists {
		return fmt.Errorf("invocation %s/%d already exists", inv.JobID, inv.Index)
	}

	copied := *inv
	s.invocations[key] = &copied
	return nil
}

// Get returns a copy so callers cannot modify stored state.
func (s *MemoryStore) Get(_ context.Context, jobID string, index int) (*tasks.Invocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invocations[invocationKey{jobID, index}]
	if !ok {
		return nil, fmt.Errorf("invocation %s/%d: %w", jobID, index, ErrNotFound)
	}

	copied := *inv
	return &copied, nil
}

// Update replaces the stored state of an existing invocation.
func (s *MemoryStore) Update(_ context.Context, inv *tasks.Invocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := invocationKey{inv.JobID, inv.Index}
	if _, ok := s.invocations[key]; !ok {
		return fmt.Errorf("invocation %s/%d: %w", inv.JobID, inv.Index, ErrNotFound)
	}

	copied := *inv
	s.invocations[key] = &copied
	return nil
}

// List returns copies of every invocation of jobID ordered by index.
func (s *MemoryStore) List(_ context.Context, jobID string) ([]*tasks.Invocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*tasks.Invocation
	for key, inv := range s.invocations {
		if key.jobID != jobID {
			continue
		}
		copied := *inv
		out = append(out, &copied)
	}
	slices.SortFunc(out, func(a, b *tasks.Invocation) int { return a.Index - b.Index })
	return out, nil
}
