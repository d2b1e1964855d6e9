package frontend

import (
	"errors"
	"sync"

	"metv/internal/domain"
)

// ErrConsumerGone is returned by ChanSink.Deliver once the consumer closed it
var ErrConsumerGone = errors.New("discovery consumer is gone")

// SinkFunc adapts a function to dvb.Sink
type SinkFunc func(ev domain.DiscoveryEvent) error

// Deliver calls f(ev)
func (f SinkFunc) Deliver(ev domain.DiscoveryEvent) error {
	return f(ev)
}

// ChanSink hands discovery events to a consumer goroutine over a channel.
//
// The producer calls Deliver and, when done, Finish. The consumer ranges
// over Events and calls Close if it stops reading early; pending and later
// deliveries then fail with ErrConsumerGone instead of blocking forever.
type ChanSink struct {
	events    chan domain.DiscoveryEvent
	done      chan struct{}
	closeOnce sync.Once
	finOnce   sync.Once
}

// NewChanSink creates a sink buffering up to size events
func NewChanSink(size int) *ChanSink {
	if size < 0 {
		size = 0
	}
	return &ChanSink{
		events: make(chan domain.DiscoveryEvent, size),
		done:   make(chan struct{}),
	}
}

// Deliver blocks until the event is queued or the consumer is gone.
// It must not be called after Finish.
func (s *ChanSink) Deliver(ev domain.DiscoveryEvent) error {
	select {
	case <-s.done:
		return ErrConsumerGone
	default:
	}

	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrConsumerGone
	}
}

// Events returns the receive side. It is closed by Finish.
func (s *ChanSink) Events() <-chan domain.DiscoveryEvent {
	return s.events
}

// Finish tells the consumer no more events will be delivered
func (s *ChanSink) Finish() {
	s.finOnce.Do(func() {
		close(s.events)
	})
}

// Close is called by the consumer when it stops receiving
func (s *ChanSink) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Len returns the number of queued, unreceived events
func (s *ChanSink) Len() int {
	return len(s.events)
}
