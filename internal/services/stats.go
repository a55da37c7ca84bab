package services

import (
	"sync/atomic"

	"github.com/celestiaorg/faceswap/internal/events"
	"github.com/celestiaorg/faceswap/internal/types"
)

// JobStats counts job outcomes from lifecycle events
type JobStats struct {
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewJobStats creates counters fed by bus. The counters observe events as
// they are published, so a full event buffer does not lose counts.
func NewJobStats(bus *events.Bus) *JobStats {
	s := &JobStats{}
	bus.Observe(events.EventJobSubmitted, s.count(&s.submitted))
	bus.Observe(events.EventJobCompleted, s.count(&s.completed))
	bus.Observe(events.EventJobFailed, s.count(&s.failed))
	return s
}

func (s *JobStats) count(c *atomic.Int64) events.Observer {
	return func(events.Event) {
		c.Add(1)
	}
}

// Snapshot returns the current counts. A nil JobStats reports zeros.
func (s *JobStats) Snapshot() types.JobCounts {
	if s == nil {
		return types.JobCounts{}
	}
	return types.JobCounts{
		Submitted: s.submitted.Load(),
		Completed: s.completed.Load(),
		Failed:    s.failed.Load(),
	}
}
