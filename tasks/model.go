package tasks

import (
	"fmt"
	"time"
)

// InvocationStatus is where a single invocation is in its lifecycle
type InvocationStatus string

const (
	StatusSubmitted InvocationStatus = "submitted"
	StatusRunning   InvocationStatus = "running"
	StatusDone      InvocationStatus = "done"
	StatusFailed    InvocationStatus = "failed"
)

func (s InvocationStatus) String() string {
	return string(s)
}

// IsFinal reports whether no further transition is allowed.
func (s InvocationStatus) IsFinal() bool {
	return s == StatusDone || s == StatusFailed
}

// Invocation records one runner-driven execution of one index of a job.
type Invocation struct {
	JobID     string           `json:"job_id"`
	Index     int              `json:"index"`
	Status    InvocationStatus `json:"status"`
	Error     string           `json:"error,omitempty"`
	StartedAt time.Time        `json:"started_at,omitzero"`
	EndedAt   time.Time        `json:"ended_at,omitzero"`
}

// NewInvocation creates an invocation in the submitted state.
func NewInvocation(jobID string, index int) *Invocation {
	return &Invocation{
		JobID:  jobID,
		Index:  index,
		Status: StatusSubmitted,
	}
}

var validTransitions = map[InvocationStatus][]InvocationStatus{
	StatusSubmitted: {StatusRunning, StatusFailed},
	StatusRunning:   {StatusDone, StatusFailed},
}

// SetStatus moves the invocation to next, rejecting transitions out of a
// final state or backwards. Start and end times are stamped on the way.
func (i *Invocation) SetStatus(next InvocationStatus) error {
	if i.Status == next {
		return nil
	}

	allowed := false
	for _, s := range validTransitions[i.Status] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("invalid status transition from %s to %s", i.Status, next)
	}

	now := time.Now()
	switch {
	case next == StatusRunning:
		i.StartedAt = now
	case next.IsFinal():
		i.EndedAt = now
	}

	i.Status = next
	return nil
}

// Duration is the time between start and end, or the time running so far.
func (i *Invocation) Duration() time.Duration {
	if i.StartedAt.IsZero() {
		return 0
	}
	if i.EndedAt.IsZero() {
		return time.Since(i.StartedAt)
	}
	return i.EndedAt.Sub(i.StartedAt)
}
