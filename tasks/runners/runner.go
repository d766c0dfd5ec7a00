// Package runners holds the concrete tasks.Runner implementations a job can
// be submitted to.
package runners

import (
	"context"
	"time"

	"github.com/google/uuid"

	"task-dispatch/tasks"
	"task-dispatch/tasks/workers"
)

var (
	_ tasks.Runner = (*SequentialRunner)(nil)
	_ tasks.Runner = (*PoolRunner)(nil)
	_ tasks.Runner = (*ArrayJobRunner)(nil)
	_ tasks.Runner = (*DistributedRunner)(nil)
	_ tasks.Runner = (*HTTPRunner)(nil)
)

type (
	jobIDKey   struct{}
	jobNameKey struct{}
)

// WithJobID makes runners record invocations under id instead of a fresh one.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey{}, id)
}

// JobID returns the job ID carried by ctx, or a new random one.
func JobID(ctx context.Context) string {
	if id, ok := ctx.Value(jobIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// WithJobName tells runners which registered job a submission builds.
func WithJobName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, jobNameKey{}, name)
}

// JobName returns the registered job name carried by ctx, or "".
func JobName(ctx context.Context) string {
	name, _ := ctx.Value(jobNameKey{}).(string)
	return name
}

// runPool starts pool and waits for its workers. When ctx ends first the pool
// is stopped, waiting at most shutdownTimeout for in-flight tasks.
func runPool(ctx context.Context, pool *workers.WorkerPool, shutdownTimeout time.Duration) error {
	if shutdownTimeout > 0 {
		pool.SetShutdownTimeout(shutdownTimeout)
	}
	pool.Start(ctx)

	waitErr := make(chan error, 1)
	go func() { waitErr <- pool.Wait() }()

	select {
	case err := <-waitErr:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	case <-ctx.Done():
		pool.Stop()
		return ctx.Err()
	}
}
