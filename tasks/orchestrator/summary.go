package orchestrator

import (
	"time"

	"task-dispatch/tasks"
)

// Summary aggregates the recorded invocations of one job.
type Summary struct {
	Done   int
	Failed int
	Other  int
	// Busy is the summed run time of every started invocation.
	Busy time.Duration
}

// Summarize counts invocations by outcome and adds up their run time.
func Summarize(invs []*tasks.Invocation) Summary {
	var s Summary
	for _, inv := range invs {
		switch inv.Status {
		case tasks.StatusDone:
			s.Done++
		case tasks.StatusFailed:
			s.Failed++
		default:
			s.Other++
		}
		s.Busy += inv.Duration()
	}
	return s
}

// Fields renders the summary for structured logging.
func (s Summary) Fields() map[string]any {
	return map[string]any{
		"done":    s.Done,
		"failed":  s.Failed,
		"pending": s.Other,
		"busy":    s.Busy.String(),
	}
}
