package tasks

import (
	"task-dispatch/errors"
)

// TaskList is an ordered collection of tasks addressable by position.
//
// Indices are assigned in append order and never change. A list is built on
// one goroutine and then handed to a Runner; after the hand-off it must be
// treated as read-only. TaskList does no locking of its own: Invoke may be
// called concurrently only if the tasks themselves are safe to run
// concurrently.
type TaskList struct {
	tasks []Task
}

// NewTaskList creates a list seeded with the given tasks, in order.
func NewTaskList(tasks ...Task) *TaskList {
	l := &TaskList{tasks: make([]Task, 0, len(tasks))}
	l.tasks = append(l.tasks, tasks...)
	return l
}

// Append adds task at the end of the list.
func (l *TaskList) Append(task Task) {
	l.tasks = append(l.tasks, task)
}

// Size returns the number of tasks in the list.
func (l *TaskList) Size() int {
	return len(l.tasks)
}

// Invoke runs the task at index exactly once and returns after it finishes.
//
// An index outside [0, Size()) runs nothing and returns an out_of_range
// TaskError. Panics raised by the task are not recovered.
func (l *TaskList) Invoke(index int) error {
	if index < 0 || index >= len(l.tasks) {
		return errors.NewOutOfRangeError(index, len(l.tasks))
	}

	task := l.tasks[index]
	if task == nil {
		return errors.NewExecutionError("task is nil", map[string]any{
			"index": index,
		})
	}

	task()
	return nil
}
