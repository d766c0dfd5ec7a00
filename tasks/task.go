package tasks

// Task is a deferred unit of work with no arguments and no result.
//
// Everything a Task needs must be captured when it is created. A Task is
// immutable once built and is owned by the TaskList that holds it.
type Task func()

// Bind returns a Task that calls fn with a copy of arg taken now.
// Later changes to the variable arg was read from are not observed.
func Bind[T any](fn func(T), arg T) Task {
	return func() {
		fn(arg)
	}
}
