package execution

import (
	"context"

	"task-dispatch/logger"
	"task-dispatch/tasks"
	"task-dispatch/tasks/store"
)

// StateManager coordinates invocation state transitions with persistence.
type StateManager interface {
	TransitionToRunning(ctx context.Context, execCtx *ExecutionContext) error
	TransitionToFailed(ctx context.Context, execCtx *ExecutionContext) error
	TransitionToCompleted(ctx context.Context, execCtx *ExecutionContext) error
}

// DefaultStateManager persists every transition to an InvocationStore.
// Persistence failures are logged but don't halt execution.
type DefaultStateManager struct {
	store  store.InvocationStore
	logger *logger.Logger
}

var _ StateManager = (*DefaultStateManager)(nil)

func NewDefaultStateManager(store store.InvocationStore, logger *logger.Logger) *DefaultStateManager {
	return &DefaultStateManager{
		store:  store,
		logger: logger,
	}
}

// TransitionToRunning records the invocation and marks it running.
// An invalid transition is returned; store failures are only logged.
func (sm *DefaultStateManager) TransitionToRunning(ctx context.Context, execCtx *ExecutionContext) error {
	inv := execCtx.Invocation
	if err := sm.store.Save(ctx, inv); err != nil {
		sm.logger.Warn("failed to save invocation", map[string]any{
			"job_id": inv.JobID,
			"index":  inv.Index,
			"error":  err.Error(),
		})
	}

	if err := inv.SetStatus(tasks.StatusRunning); err != nil {
		return err
	}

	sm.persist(ctx, inv, "failed to update running status")
	return nil
}

// TransitionToFailed ensures error states are captured even when persistence fails.
func (sm *DefaultStateManager) TransitionToFailed(ctx context.Context, execCtx *ExecutionContext) error {
	inv := execCtx.Invocation
	if err := inv.SetStatus(tasks.StatusFailed); err != nil {
		sm.logger.Error("failed to set invocation status to failed", map[string]any{
			"job_id": inv.JobID,
			"index":  inv.Index,
			"error":  err.Error(),
		})
	}

	sm.persist(ctx, inv, "failed to update invocation failure state")
	return nil
}

// TransitionToCompleted finalizes a successful invocation.
func (sm *DefaultStateManager) TransitionToCompleted(ctx context.Context, execCtx *ExecutionContext) error {
	inv := execCtx.Invocation
	if err := inv.SetStatus(tasks.StatusDone); err != nil {
		return err
	}

	// the task ran, what failed would only be the record of it
	sm.persist(ctx, inv, "failed to update final invocation state")
	return nil
}

func (sm *DefaultStateManager) persist(ctx context.Context, inv *tasks.Invocation, message string) {
	if err := sm.store.Update(ctx, inv); err != nil {
		sm.logger.Invocation(inv.JobID, inv.Index, message, map[string]any{
			"error":  err.Error(),
			"status": inv.Status.String(),
		})
	}
}
