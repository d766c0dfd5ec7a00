package execution

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"task-dispatch/logger"
	"task-dispatch/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockStore for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, inv *tasks.Invocation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockStore) Get(ctx context.Context, jobID string, index int) (*tasks.Invocation, error) {
	args := m.Called(ctx, jobID, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.Invocation), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, inv *tasks.Invocation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockStore) List(ctx context.Context, jobID string) ([]*tasks.Invocation, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tasks.Invocation), args.Error(1)
}

func newTestStateManager() (*DefaultStateManager, *MockStore, *bytes.Buffer) {
	mockStore := &MockStore{}
	var buf bytes.Buffer
	return NewDefaultStateManager(mockStore, logger.New("DEBUG", &buf)), mockStore, &buf
}

func TestStateManager_TransitionToRunning_Success(t *testing.T) {
	sm, mockStore, _ := newTestStateManager()
	execCtx := NewExecutionContext("job", 1)

	mockStore.On("Save", mock.Anything, execCtx.Invocation).Return(nil)
	mockStore.On("Update", mock.Anything, execCtx.Invocation).Return(nil)

	err := sm.TransitionToRunning(context.Background(), execCtx)

	assert.NoError(t, err)
	assert.Equal(t, tasks.StatusRunning, execCtx.Invocation.Status)
	mockStore.AssertExpectations(t)
}

func TestStateManager_TransitionToRunning_StoreFailureDoesNotBlock(t *testing.T) {
	sm, mockStore, buf := newTestStateManager()
	execCtx := NewExecutionContext("job", 1)

	mockStore.On("Save", mock.Anything, mock.Anything).Return(errors.New("save down"))
	mockStore.On("Update", mock.Anything, mock.Anything).Return(errors.New("update down"))

	err := sm.TransitionToRunning(context.Background(), execCtx)

	assert.NoError(t, err)
	assert.Equal(t, tasks.StatusRunning, execCtx.Invocation.Status)
	assert.Contains(t, buf.String(), "save down")
	assert.Contains(t, buf.String(), "update down")
}

func TestStateManager_TransitionToRunning_InvalidTransition(t *testing.T) {
	sm, mockStore, _ := newTestStateManager()
	execCtx := NewExecutionContext("job", 1)
	execCtx.Invocation.Status = tasks.StatusDone

	mockStore.On("Save", mock.Anything, mock.Anything).Return(nil)

	err := sm.TransitionToRunning(context.Background(), execCtx)

	assert.ErrorContains(t, err, "invalid status transition")
	mockStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestStateManager_TransitionToCompleted(t *testing.T) {
	sm, mockStore, _ := newTestStateManager()
	execCtx := NewExecutionContext("job", 2)
	execCtx.Invocation.Status = tasks.StatusRunning

	mockStore.On("Update", mock.Anything, execCtx.Invocation).Return(errors.New("store down"))

	err := sm.TransitionToCompleted(context.Background(), execCtx)

	assert.NoError(t, err)
	assert.Equal(t, tasks.StatusDone, execCtx.Invocation.Status)
	mockStore.AssertExpectations(t)
}

func TestStateManager_TransitionToFailed_NeverErrors(t *testing.T) {
	sm, mockStore, buf := newTestStateManager()
	execCtx := NewExecutionContext("job", 3)
	execCtx.Invocation.Status = tasks.StatusDone

	mockStore.On("Update", mock.Anything, mock.Anything).Return(nil)

	err := sm.TransitionToFailed(context.Background(), execCtx)

	assert.NoError(t, err)
	assert.Equal(t, tasks.StatusDone, execCtx.Invocation.Status)
	assert.Contains(t, buf.String(), "failed to set invocation status to failed")
}
