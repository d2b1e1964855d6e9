package service

import (
	"context"
	"log"
	"time"

	"metv/internal/domain"
	"metv/internal/inventory"
	"metv/internal/repository"
)

// TuningChange is the payload of EventTuningChanged
type TuningChange struct {
	Frontend domain.FrontendID `json:"frontend"`
	Channel  string            `json:"channel"`
}

// DiscoveryService consumes discovery events on behalf of the application
type DiscoveryService struct {
	inv      *inventory.Inventory
	journal  repository.Journal
	eventBus *EventBus
	now      func() time.Time
}

// NewDiscoveryService creates the consumer. journal may be nil.
func NewDiscoveryService(inv *inventory.Inventory, journal repository.Journal, eventBus *EventBus) *DiscoveryService {
	return &DiscoveryService{
		inv:      inv,
		journal:  journal,
		eventBus: eventBus,
		now:      time.Now,
	}
}

// Run consumes events until the channel is closed or ctx ends
func (s *DiscoveryService) Run(ctx context.Context, events <-chan domain.DiscoveryEvent) error {
	return s.inv.Consume(ctx, events, func(change inventory.Change) {
		s.handle(ctx, change)
	})
}

func (s *DiscoveryService) handle(ctx context.Context, change inventory.Change) {
	ev := change.Event

	if s.journal != nil {
		if err := s.journal.Record(ctx, repository.EntryFor(ev, s.now())); err != nil {
			log.Printf("Failed to journal %s: %v", ev.Kind(), err)
		}
	}

	switch e := ev.(type) {
	case domain.FrontendAppeared:
		if change.Added == nil {
			log.Printf("Frontend %s reported again, ignoring", e.ID)
			return
		}
		log.Printf("Frontend %s available", e.ID)
		s.eventBus.Publish(NewEvent(EventFrontendAppeared, change.Added))

	case domain.AdapterDisappeared:
		log.Printf("Adapter %d gone (%d frontends removed)", e.ID, len(change.Removed))
		s.eventBus.Publish(NewEvent(EventAdapterDisappeared, map[string]interface{}{
			"adapter": e.ID,
			"removed": change.Removed,
		}))
	}
}

// Tune records a tuning request and announces it
func (s *DiscoveryService) Tune(ctx context.Context, t domain.TuningID) error {
	if err := s.inv.Tune(t); err != nil {
		return err
	}
	log.Printf("Tuned %s", t)
	s.eventBus.Publish(NewEvent(EventTuningChanged, TuningChange{Frontend: t.Frontend, Channel: t.Channel}))
	return nil
}

// Release clears a tuning and announces it
func (s *DiscoveryService) Release(ctx context.Context, id domain.FrontendID) error {
	if err := s.inv.Release(id); err != nil {
		return err
	}
	s.eventBus.Publish(NewEvent(EventTuningChanged, TuningChange{Frontend: id}))
	return nil
}

// Inventory exposes the read side for handlers
func (s *DiscoveryService) Inventory() *inventory.Inventory {
	return s.inv
}

// Journal returns the journal, or nil when journaling is disabled
func (s *DiscoveryService) Journal() repository.Journal {
	return s.journal
}
