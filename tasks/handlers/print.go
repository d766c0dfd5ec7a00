package handlers

import (
	"fmt"
	"io"
	"slices"

	"task-dispatch/tasks"
)

// Print returns a task that writes one formatted line to w.
// The arguments are copied when the task is built.
func Print(w io.Writer, format string, args ...any) tasks.Task {
	return tasks.Bind(func(captured []any) {
		fmt.Fprintf(w, format+"\n", captured...)
	}, slices.Clone(args))
}
