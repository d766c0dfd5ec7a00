package handlers

import (
	"time"

	"task-dispatch/errors"
	"task-dispatch/tasks"
)

// Sleeper abstracts time.Sleep to allow injection of real vs fake implementations.
// This makes the task testable without incurring real wait time.
type Sleeper interface {
	Sleep(d time.Duration)
}

// RealSleeper delegates directly to time.Sleep.
type RealSleeper struct{}

func (RealSleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Sleep returns a task that pauses for d. The duration must be positive.
func Sleep(sleeper Sleeper, d time.Duration) (tasks.Task, error) {
	if sleeper == nil {
		sleeper = RealSleeper{}
	}
	if d <= 0 {
		return nil, errors.NewValidationError("invalid sleep duration: must be > 0", map[string]any{
			"duration": d.String(),
		})
	}
	return func() {
		sleeper.Sleep(d)
	}, nil
}
