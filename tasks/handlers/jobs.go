package handlers

import (
	"io"
	"time"

	"task-dispatch/tasks"
)

// HelloWorld builds n tasks, each printing "Hello, world!: i".
func HelloWorld(w io.Writer, n int) func() *tasks.TaskList {
	return func() *tasks.TaskList {
		list := tasks.NewTaskList()
		for i := range n {
			list.Append(Print(w, "Hello, world!: %d", i))
		}
		return list
	}
}

// SecondJob builds n tasks, each printing "This is the 2nd job: i".
func SecondJob(w io.Writer, n int) func() *tasks.TaskList {
	return func() *tasks.TaskList {
		list := tasks.NewTaskList()
		for i := range n {
			list.Append(Print(w, "This is the 2nd job: %d", i))
		}
		return list
	}
}

// SleepJob builds n tasks that each pause for d and then print "Slept d: i".
// The duration is validated once, before the job is registered.
func SleepJob(w io.Writer, sleeper Sleeper, n int, d time.Duration) (func() *tasks.TaskList, error) {
	if _, err := Sleep(sleeper, d); err != nil {
		return nil, err
	}
	return func() *tasks.TaskList {
		list := tasks.NewTaskList()
		for i := range n {
			pause, _ := Sleep(sleeper, d)
			done := Print(w, "Slept %s: %d", d, i)
			list.Append(func() {
				pause()
				done()
			})
		}
		return list
	}, nil
}
