package runners

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"sync"

	"task-dispatch/api/server"
	"task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/execution"
	"task-dispatch/tasks/store"
)

// HTTPRunner lets a remote scheduler drive a job over HTTP. It serves until
// every index has run once or ctx ends.
type HTTPRunner struct {
	opts     server.Options
	listener net.Listener
	store    store.InvocationStore
	logger   *logger.Logger
}

func NewHTTPRunner(opts server.Options, invocations store.InvocationStore, lg *logger.Logger) *HTTPRunner {
	return &HTTPRunner{
		opts:   opts,
		store:  invocations,
		logger: lg,
	}
}

// WithListener serves the next submission on ln instead of opts.Address.
func (r *HTTPRunner) WithListener(ln net.Listener) *HTTPRunner {
	r.listener = ln
	return r
}

func (r *HTTPRunner) RunTasks(ctx context.Context, ref any, size int, callback tasks.Callback) error {
	jobID := JobID(ctx)
	if size == 0 {
		r.logger.Info("nothing to serve for empty job", map[string]any{"job_id": jobID})
		return nil
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracker := execution.NewTracker(execution.NewDefaultStateManager(r.store, r.logger), r.logger)
	d := newHTTPDispatch(jobID, ref, size, tracker.Wrap(serveCtx, jobID, callback), r.store)

	go func() {
		select {
		case <-d.allDone:
			r.logger.Info("every index has run", map[string]any{"job_id": jobID})
			cancel()
		case <-serveCtx.Done():
		}
	}()

	srv := server.New(d, r.opts, r.logger)

	var err error
	if r.listener != nil {
		ln := r.listener
		r.listener = nil
		err = srv.Serve(serveCtx, ln)
	} else {
		err = srv.Start(serveCtx)
	}
	if err != nil {
		return err
	}

	if !d.finished() {
		return ctx.Err()
	}
	return d.failures()
}

// httpDispatch adapts one submitted job to api.Dispatcher.
type httpDispatch struct {
	jobID    string
	ref      any
	size     int
	callback tasks.Callback
	store    store.InvocationStore

	mu       sync.Mutex
	ran      map[int]bool
	errs     []error
	allDone  chan struct{}
	doneOnce sync.Once
}

func newHTTPDispatch(jobID string, ref any, size int, callback tasks.Callback, invocations store.InvocationStore) *httpDispatch {
	return &httpDispatch{
		jobID:    jobID,
		ref:      ref,
		size:     size,
		callback: callback,
		store:    invocations,
		ran:      make(map[int]bool, size),
		allDone:  make(chan struct{}),
	}
}

func (d *httpDispatch) JobID() string { return d.jobID }
func (d *httpDispatch) Size() int     { return d.size }

func (d *httpDispatch) Invoke(_ context.Context, index int) error {
	if index < 0 || index >= d.size {
		return errors.NewOutOfRangeError(index, d.size)
	}
	err := d.call(index)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.errs = append(d.errs, fmt.Errorf("index %d: %w", index, err))
	}
	d.ran[index] = true
	if len(d.ran) == d.size {
		d.doneOnce.Do(func() { close(d.allDone) })
	}
	return err
}

// call runs the callback and turns a task panic into an execution error.
func (d *httpDispatch) call(index int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewExecutionError(fmt.Sprintf("task panicked: %v", r), map[string]any{
				"index": index,
			})
		}
	}()
	return d.callback(d.ref, index)
}

func (d *httpDispatch) Invocation(ctx context.Context, index int) (*tasks.Invocation, error) {
	return d.store.Get(ctx, d.jobID, index)
}

func (d *httpDispatch) finished() bool {
	select {
	case <-d.allDone:
		return true
	default:
		return false
	}
}

func (d *httpDispatch) failures() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return stderrors.Join(d.errs...)
}
