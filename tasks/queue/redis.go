package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue shares index messages between processes through a Redis list.
type RedisQueue struct {
	client       *redis.Client
	queueName    string
	blockTimeout time.Duration
	borrowed     bool // client belongs to the queue Named was called on
}

var _ IndexQueue = (*RedisQueue)(nil)

// NewRedisQueue connects to url. Dequeue waits at most blockTimeout for a
// message before returning ErrQueueEmpty; zero waits indefinitely.
func NewRedisQueue(url, queueName string, blockTimeout time.Duration) (*RedisQueue, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{
		client:       client,
		queueName:    queueName,
		blockTimeout: blockTimeout,
	}, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, msg IndexMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// Add to queue (left push for FIFO with right pop)
	return q.client.LPush(ctx, q.queueName, data).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*IndexMessage, error) {
	result, err := q.client.BRPop(ctx, q.blockTimeout, q.queueName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue message: %w", err)
	}

	// BRPop returns [queueName, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPop result format. Should have %d elements but got %d", 2, len(result))
	}

	var msg IndexMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}

// Client exposes the underlying connection so a store can share it.
func (q *RedisQueue) Client() *redis.Client {
	return q.client
}

// Named returns a queue on another Redis list that shares q's connection and
// block timeout. Closing it leaves the connection open.
func (q *RedisQueue) Named(queueName string) *RedisQueue {
	return &RedisQueue{
		client:       q.client,
		queueName:    queueName,
		blockTimeout: q.blockTimeout,
		borrowed:     true,
	}
}

func (q *RedisQueue) Close() error {
	if q.borrowed {
		return nil
	}
	return q.client.Close()
}
