package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// TaskErrorType categorizes the ways a dispatch can fail
type TaskErrorType string

const (
	ValidationError TaskErrorType = "validation"
	ExecutionError  TaskErrorType = "execution"
	NotFoundError   TaskErrorType = "not_found"
	OutOfRangeError TaskErrorType = "out_of_range"
	InternalError   TaskErrorType = "internal"
)

// TaskError provides structured error information with HTTP status suggestions
type TaskError struct {
	Type    TaskErrorType  `json:"type"`
	Message string         `json:"message"`
	Code    int            `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Constructor functions for common error types
func NewValidationError(message string, details ...map[string]any) *TaskError {
	return newTaskError(ValidationError, message, http.StatusBadRequest, details)
}

func NewExecutionError(message string, details ...map[string]any) *TaskError {
	return newTaskError(ExecutionError, message, http.StatusUnprocessableEntity, details)
}

func NewNotFoundError(message string, details ...map[string]any) *TaskError {
	return newTaskError(NotFoundError, message, http.StatusNotFound, details)
}

// NewOutOfRangeError reports an index that does not address a task in a list of the given size.
func NewOutOfRangeError(index, size int) *TaskError {
	return &TaskError{
		Type:    OutOfRangeError,
		Message: fmt.Sprintf("index %d out of range [0, %d)", index, size),
		Code:    http.StatusBadRequest,
		Details: map[string]any{
			"index": index,
			"size":  size,
		},
	}
}

func NewInternalError(message string, details ...map[string]any) *TaskError {
	return newTaskError(InternalError, message, http.StatusInternalServerError, details)
}

func newTaskError(t TaskErrorType, message string, code int, details []map[string]any) *TaskError {
	var d map[string]any
	if len(details) > 0 {
		d = details[0]
	}
	return &TaskError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: d,
	}
}

// IsTaskError checks if an error is, or wraps, a TaskError and returns it
func IsTaskError(err error) (*TaskError, bool) {
	var taskErr *TaskError
	if stderrors.As(err, &taskErr) {
		return taskErr, true
	}
	return nil, false
}

// IsType reports whether err carries a TaskError of the given type.
func IsType(err error, t TaskErrorType) bool {
	taskErr, ok := IsTaskError(err)
	return ok && taskErr.Type == t
}
