package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/faceswap/internal/events"
	"github.com/celestiaorg/faceswap/internal/types"
)

func TestJobStats(t *testing.T) {
	bus := events.NewBus(events.EventChannelSize)
	stats := NewJobStats(bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus.Start(ctx)

	bus.Publish(events.Event{Type: events.EventJobSubmitted, JobID: "a"})
	bus.Publish(events.Event{Type: events.EventJobSubmitted, JobID: "b"})
	bus.Publish(events.Event{Type: events.EventJobCompleted, JobID: "a"})
	bus.Publish(events.Event{Type: events.EventJobFailed, JobID: "b"})

	require.Eventually(t, func() bool {
		return stats.Snapshot() == types.JobCounts{Submitted: 2, Completed: 1, Failed: 1}
	}, 2*time.Second, 10*time.Millisecond)

	var nilStats *JobStats
	assert.Equal(t, types.JobCounts{}, nilStats.Snapshot())
}

func TestJobStatsCountsWhenBufferIsFull(t *testing.T) {
	// never started, so the single slot fills on the first publish
	bus := events.NewBus(1)
	stats := NewJobStats(bus)

	for i := 0; i < 5; i++ {
		bus.Publish(events.Event{Type: events.EventJobSubmitted})
	}
	bus.Publish(events.Event{Type: events.EventJobFailed})

	assert.Equal(t, types.JobCounts{Submitted: 5, Failed: 1}, stats.Snapshot())
}
