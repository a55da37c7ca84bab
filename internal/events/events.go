// Package events provides an in-process publish/subscribe bus for job
// lifecycle events
package events

import (
	"context"
	"sync"
	"time"

	"github.com/celestiaorg/faceswap/internal/logger"
)

// EventType represents the type of a job event
type EventType string

const (
	// EventJobCreated is emitted when a job record is created
	EventJobCreated EventType = "job_created"
	// EventJobSubmitted is emitted when a job is queued for execution
	EventJobSubmitted EventType = "job_submitted"
	// EventJobCompleted is emitted when the executor reported success
	EventJobCompleted EventType = "job_completed"
	// EventJobFailed is emitted when the executor failed
	EventJobFailed EventType = "job_failed"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a job lifecycle event
type Event struct {
	Type       EventType
	JobID      string
	AppContext string
	Error      string
	Duration   time.Duration
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

// Observer is called synchronously on Publish. It must not block.
type Observer func(Event)

// Bus dispatches published events to subscribed handlers
type Bus struct {
	handlers   map[EventType][]Handler
	observers  map[EventType][]Observer
	handlersMu sync.RWMutex
	eventChan  chan Event
}

// NewBus creates a bus with a buffered event channel
func NewBus(size int) *Bus {
	return &Bus{
		handlers:  make(map[EventType][]Handler),
		observers: make(map[EventType][]Observer),
		eventChan: make(chan Event, size),
	}
}

// Observe registers an observer for a specific event type. Observers see
// every published event, including those dropped from a full buffer.
func (b *Bus) Observe(eventType EventType, observer Observer) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	b.observers[eventType] = append(b.observers[eventType], observer)
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish runs the observers of the event and queues it for the handlers.
// When the buffer is full the event is dropped for the handlers so a slow
// subscriber never blocks a request.
func (b *Bus) Publish(event Event) {
	b.handlersMu.RLock()
	observers := b.observers[event.Type]
	b.handlersMu.RUnlock()
	for _, observe := range observers {
		observe(event)
	}

	select {
	case b.eventChan <- event:
		logger.Debugf("Published event: %s (Job: %s)", event.Type, event.JobID)
	default:
		logger.Warnf("Event buffer full, dropping %s for job %s", event.Type, event.JobID)
	}
}

// Start starts the event processing loop until ctx is done
func (b *Bus) Start(ctx context.Context) {
	go b.processEvents(ctx)
	logger.Info("Started event processing loop")
}

func (b *Bus) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-b.eventChan:
			b.handlersMu.RLock()
			eventHandlers := b.handlers[event.Type]
			b.handlersMu.RUnlock()

			for _, handler := range eventHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s for job %s: %v", e.Type, e.JobID, err)
					}
				}(handler, event)
			}
		}
	}
}
