package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"task-dispatch/tasks"

	"github.com/redis/go-redis/v9"
)

var _ InvocationStore = (*RedisStore)(nil)

// RedisStore keeps one hash per job, field = index, value = JSON invocation.
// Processes of a distributed run share it to report progress.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStoreWithClient wraps an existing client. The caller owns the
// connection and closes it.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(jobID string) string {
	return s.prefix + ":invocations:" + jobID
}

func (s *RedisStore) Save(ctx context.Context, inv *tasks.Invocation) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to marshal invocation: %w", err)
	}

	created, err := s.client.HSetNX(ctx, s.key(inv.JobID), strconv.Itoa(inv.Index), data).Result()
	if err != nil {
		return fmt.Errorf("failed to save invocation: %w", err)
	}
	if !created {
		return fmt.Errorf("invocation %s/%d already exists", inv.JobID, inv.Index)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, jobID string, index int) (*tasks.Invocation, error) {
	data, err := s.client.HGet(ctx, s.key(jobID), strconv.Itoa(index)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("invocation %s/%d: %w", jobID, index, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invocation: %w", err)
	}

	var inv tasks.Invocation
	if err := json.Unmarshal([]byte(data), &inv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invocation: %w", err)
	}
	return &inv, nil
}

func (s *RedisStore) Update(ctx context.Context, inv *tasks.Invocation) error {
	field := strconv.Itoa(inv.Index)
	exists, err := s.client.HExists(ctx, s.key(inv.JobID), field).Result()
	if err != nil {
		return fmt.Errorf("failed to check invocation: %w", err)
	}
	if !exists {
		return fmt.Errorf("invocation %s/%d: %w", inv.JobID, inv.Index, ErrNotFound)
	}

	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to marshal invocation: %w", err)
	}
	return s.client.HSet(ctx, s.key(inv.JobID), field, data).Err()
}

func (s *RedisStore) List(ctx context.Context, jobID string) ([]*tasks.Invocation, error) {
	values, err := s.client.HGetAll(ctx, s.key(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list invocations: %w", err)
	}

	out := make([]*tasks.Invocation, 0, len(values))
	for _, data := range values {
		var inv tasks.Invocation
		if err := json.Unmarshal([]byte(data), &inv); err != nil {
			return nil, fmt.Errorf("failed to unmarshal invocation: %w", err)
		}
		out = append(out, &inv)
	}
	slices.SortFunc(out, func(a, b *tasks.Invocation) int { return a.Index - b.Index })
	return out, nil
}
