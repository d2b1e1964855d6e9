package service

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"metv/internal/domain"
)

// EventType defines the type of event
type EventType string

const (
	EventFrontendAppeared   EventType = EventType(domain.KindFrontendAppeared)
	EventAdapterDisappeared EventType = EventType(domain.KindAdapterDisappeared)
	EventTuningChanged      EventType = "tuning_changed"
	EventManagerTerminated  EventType = "manager_terminated"
)

// Event represents an event that occurred in the system
type Event struct {
	ID      string      `json:"id"`
	Type    EventType   `json:"type"`
	Time    time.Time   `json:"time"`
	Payload interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		Time:    time.Now().UTC(),
		Payload: payload,
	}
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
	dropped     atomic.Uint64
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber. Once it returns, Publish no longer
// sends on ch, so the caller may close it.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = slices.DeleteFunc(eb.subscribers, func(sub chan<- Event) bool {
		return sub == ch
	})
}

// Publish sends an event to all subscribers without blocking
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
			eb.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped for slow subscribers
func (eb *EventBus) Dropped() uint64 {
	return eb.dropped.Load()
}
