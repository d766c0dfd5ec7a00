package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"task-dispatch/logger"
	"task-dispatch/tasks/execution"
	"task-dispatch/tasks/queue"
)

// WorkerPool manages a collection of workers and their lifecycle
type WorkerPool struct {
	workers         []*Worker
	logger          *logger.Logger
	wg              sync.WaitGroup
	cancelFn        context.CancelFunc
	shutdownTimeout time.Duration
	mu              sync.RWMutex // protects cancelFn, shutdownTimeout and failures
	failures        []error
}

func NewWorkerPool(
	workerCount int,
	queue queue.IndexQueue,
	target Target,
	stateManager execution.StateManager,
	logger *logger.Logger,
) *WorkerPool {
	p := &WorkerPool{
		logger:          logger,
		shutdownTimeout: 30 * time.Second,
	}

	p.workers = make([]*Worker, workerCount)
	for i := range workerCount {
		w := NewWorker(i+1, queue, target, stateManager, logger)
		w.report = p.recordFailure
		p.workers[i] = w
	}

	return p
}

func (p *WorkerPool) recordFailure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, err)
}

// Start begins all workers in the pool
func (p *WorkerPool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancelFn = cancel

	p.logger.Info("starting worker pool", map[string]any{
		"worker_count": len(p.workers),
	})

	for _, worker := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Start(workerCtx)
		}(worker)
	}
}

// Wait blocks until every worker has exited and returns the joined errors
// of all failed invocations.
func (p *WorkerPool) Wait() error {
	p.wg.Wait()

	p.mu.Lock()
	if p.cancelFn != nil {
		p.cancelFn()
		p.cancelFn = nil
	}
	p.mu.Unlock()

	return p.Failures()
}

// Failures returns the joined errors recorded so far, or nil.
func (p *WorkerPool) Failures() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return errors.Join(p.failures...)
}

// Stop gracefully shuts down all workers
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	cancelFn := p.cancelFn
	timeout := p.shutdownTimeout
	p.mu.Unlock()

	p.logger.Info("stopping worker pool", map[string]any{
		"worker_count": len(p.workers),
		"timeout":      timeout.String(),
	})

	if cancelFn != nil {
		cancelFn()
	}

	for _, worker := range p.workers {
		worker.Stop()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
	case <-time.After(timeout):
		p.logger.Warn("worker pool shutdown timed out", map[string]any{
			"timeout":         timeout.String(),
			"forced_shutdown": true,
		})
	}

	p.mu.Lock()
	p.cancelFn = nil
	p.mu.Unlock()
}

// GetWorkerCount returns the number of workers in the pool
func (p *WorkerPool) GetWorkerCount() int {
	return len(p.workers)
}

// SetShutdownTimeout configures how long to wait for graceful shutdown
func (p *WorkerPool) SetShutdownTimeout(timeout time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdownTimeout = timeout
}
