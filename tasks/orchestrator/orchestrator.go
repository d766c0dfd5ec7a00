package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/registry"
	"task-dispatch/tasks/runners"
	"task-dispatch/tasks/store"
)

// JobStatus is where a submitted job is in its lifecycle
type JobStatus string

const (
	JobSubmitted JobStatus = "submitted"
	JobRunning   JobStatus = "running"
	JobDone      JobStatus = "done"
	JobFailed    JobStatus = "failed"
)

// Job is one submission of a registered task list.
type Job struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
}

// Orchestrator defines the contract for job submission services.
type Orchestrator interface {
	// SubmitJob builds the named task list and hands it to the runner.
	// It returns once the runner returns.
	SubmitJob(ctx context.Context, name string) (*Job, error)

	// GetJob returns a copy of a job submitted by this orchestrator.
	GetJob(id string) (*Job, error)

	// Invocations lists the recorded invocations of a job.
	Invocations(ctx context.Context, id string) ([]*tasks.Invocation, error)
}

// orchestrator is the single implementation; behaviour varies with the
// injected runner (sequential, pool, array job, distributed, HTTP).
type orchestrator struct {
	registry *registry.JobRegistry
	runner   tasks.Runner
	store    store.InvocationStore
	logger   *logger.Logger
	runID    string

	mu   sync.RWMutex
	jobs map[string]*Job
}

var _ Orchestrator = (*orchestrator)(nil)

// Option configures an orchestrator
type Option func(*orchestrator)

// WithRunID derives each job ID from runID and the job name instead of
// generating a random one, so separate processes submitting the same job in
// the same run agree on its ID.
func WithRunID(runID string) Option {
	return func(o *orchestrator) {
		o.runID = runID
	}
}

func NewOrchestrator(reg *registry.JobRegistry, runner tasks.Runner, invocations store.InvocationStore, lg *logger.Logger, opts ...Option) Orchestrator {
	o := &orchestrator{
		registry: reg,
		runner:   runner,
		store:    invocations,
		logger:   lg,
		jobs:     make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// JobID returns the ID a job named name gets within runID.
func JobID(runID, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(runID+"/"+name)).String()
}

func (o *orchestrator) newJobID(name string) string {
	if o.runID == "" {
		return uuid.NewString()
	}
	return JobID(o.runID, name)
}

func (o *orchestrator) SubmitJob(ctx context.Context, name string) (*Job, error) {
	build, ok := o.registry.Get(name)
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no job registered with name: %s", name), map[string]any{
			"registered_jobs": o.registry.GetRegisteredJobs(),
		})
	}

	list := build()
	job := &Job{
		ID:        o.newJobID(name),
		Name:      name,
		Size:      list.Size(),
		Status:    JobSubmitted,
		CreatedAt: time.Now().UTC(),
	}
	o.put(job)

	o.logger.Info("job submitted", map[string]any{
		"job_id":      job.ID,
		"job_name":    name,
		"size":        job.Size,
		"run_id":      o.runID,
		"runner_type": fmt.Sprintf("%T", o.runner),
	})

	o.setStatus(job.ID, JobRunning, nil)
	runCtx := runners.WithJobName(runners.WithJobID(ctx, job.ID), name)
	err := tasks.Submit(runCtx, list, o.runner)
	if err != nil {
		o.logger.Error("job failed", map[string]any{
			"job_id": job.ID,
			"error":  err.Error(),
		})
		o.setStatus(job.ID, JobFailed, err)
		return o.snapshot(job.ID), err
	}

	o.setStatus(job.ID, JobDone, nil)
	o.logger.Info("job completed", map[string]any{
		"job_id":   job.ID,
		"job_name": name,
	})
	return o.snapshot(job.ID), nil
}

func (o *orchestrator) GetJob(id string) (*Job, error) {
	if job := o.snapshot(id); job != nil {
		return job, nil
	}
	return nil, errors.NewNotFoundError(fmt.Sprintf("job %s not found", id))
}

func (o *orchestrator) Invocations(ctx context.Context, id string) ([]*tasks.Invocation, error) {
	if _, err := o.GetJob(id); err != nil {
		return nil, err
	}

	invs, err := o.store.List(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to list invocations", map[string]any{
			"job_id": id,
			"error":  err.Error(),
		})
	}
	return invs, nil
}

func (o *orchestrator) put(job *Job) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.jobs[job.ID] = job
}

func (o *orchestrator) setStatus(id string, status JobStatus, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job := o.jobs[id]
	job.Status = status
	if err != nil {
		job.Error = err.Error()
	}
	if status == JobDone || status == JobFailed {
		job.EndedAt = time.Now().UTC()
	}
}

func (o *orchestrator) snapshot(id string) *Job {
	o.mu.RLock()
	defer o.mu.RUnlock()

	job, ok := o.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}
