package main

import (
	"context"
	"fmt"
	"log"
	"maps"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-dispatch/api/server"
	"task-dispatch/config"
	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/execution"
	"task-dispatch/tasks/handlers"
	"task-dispatch/tasks/orchestrator"
	"task-dispatch/tasks/queue"
	"task-dispatch/tasks/registry"
	"task-dispatch/tasks/runners"
	"task-dispatch/tasks/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// stdout carries task output and the array-job protocol
	lg := logger.New(cfg.LogLevel, os.Stderr)

	lg.Info("starting task dispatch", map[string]any{
		"version":     cfg.Version,
		"runner":      cfg.Runner,
		"jobs":        cfg.Jobs(),
		"log_level":   cfg.LogLevel,
		"config_file": cfg.ConfigFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error("task dispatch failed", map[string]any{
			"error": err.Error(),
		})
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	reg, err := createJobRegistry(lg)
	if err != nil {
		return err
	}

	q, err := createQueue(cfg)
	if err != nil {
		return err
	}
	if q != nil {
		defer q.Close()
	}

	invocations := createStore(cfg, q)
	runner, err := createRunner(cfg, reg, q, invocations, lg)
	if err != nil {
		return err
	}

	orch := orchestrator.NewOrchestrator(reg, runner, invocations, lg, orchestrator.WithRunID(cfg.RunID))
	for _, name := range cfg.Jobs() {
		job, err := orch.SubmitJob(ctx, name)
		if err != nil {
			return fmt.Errorf("job %s: %w", name, err)
		}
		fields := map[string]any{
			"job_id":   job.ID,
			"job_name": job.Name,
			"size":     job.Size,
			"status":   string(job.Status),
		}
		if invs, err := orch.Invocations(ctx, job.ID); err == nil {
			maps.Copy(fields, orchestrator.Summarize(invs).Fields())
		}
		lg.Info("job finished", fields)
	}
	return nil
}

// createJobRegistry sets up the jobs this binary can submit
func createJobRegistry(lg *logger.Logger) (*registry.JobRegistry, error) {
	sleep, err := handlers.SleepJob(os.Stdout, handlers.RealSleeper{}, 3, time.Second)
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry()
	reg.Register("hello", handlers.HelloWorld(os.Stdout, 10))
	reg.Register("second", handlers.SecondJob(os.Stdout, 5))
	reg.Register("sleep", sleep)

	lg.Info("registered jobs", map[string]any{
		"count": len(reg.GetRegisteredJobs()),
		"jobs":  reg.GetRegisteredJobs(),
	})

	return reg, nil
}

// createQueue connects to Redis for distributed runs; other runners need no queue.
func createQueue(cfg *config.Config) (*queue.RedisQueue, error) {
	if cfg.Runner != config.RunnerDistributed {
		return nil, nil
	}
	return queue.NewRedisQueue(cfg.RedisURL, cfg.QueueName, cfg.DequeueTimeout)
}

// createStore shares the queue's Redis connection so producer and workers see one store.
func createStore(cfg *config.Config, q *queue.RedisQueue) store.InvocationStore {
	if q == nil {
		return store.NewMemoryStore()
	}
	return store.NewRedisStoreWithClient(q.Client(), cfg.QueueName)
}

func createRunner(cfg *config.Config, reg *registry.JobRegistry, q *queue.RedisQueue, invocations store.InvocationStore, lg *logger.Logger) (tasks.Runner, error) {
	sm := execution.NewDefaultStateManager(invocations, lg)

	switch cfg.Runner {
	case config.RunnerSequential:
		return runners.NewSequentialRunner(sm, lg), nil
	case config.RunnerPool:
		return runners.NewPoolRunner(cfg.WorkerCount, sm, lg).WithShutdownTimeout(cfg.ShutdownTimeout), nil
	case config.RunnerArrayJob:
		return runners.NewArrayJobRunner(os.Stdin, os.Stdout, sm, lg), nil
	case config.RunnerDistributed:
		// one list per job so workers never pick up another job's indices
		queueFor := func(job string) queue.IndexQueue {
			return q.Named(cfg.QueueName + ":" + job)
		}
		return runners.NewDistributedRunner(queueFor, cfg.DistributedRole, cfg.WorkerCount, sm, lg).
			WithShutdownTimeout(cfg.ShutdownTimeout), nil
	case config.RunnerHTTP:
		opts := server.Options{
			Address:         cfg.Address(),
			Version:         cfg.Version,
			ShutdownTimeout: cfg.ShutdownTimeout,
			Jobs:            reg,
		}
		return runners.NewHTTPRunner(opts, invocations, lg), nil
	default:
		return nil, fmt.Errorf("unknown runner %q", cfg.Runner)
	}
}
