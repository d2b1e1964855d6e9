// Package inventory keeps the consumer-side view of available tuner
// hardware, built only from the discovery events the frontend manager
// forwards.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"metv/internal/domain"
	"metv/internal/dvb"
)

// ErrUnknownFrontend is returned when tuning a frontend that is not present
var ErrUnknownFrontend = errors.New("unknown frontend")

// Frontend is one available frontend with its device nodes
type Frontend struct {
	ID        domain.FrontendID `json:"id"`
	Paths     dvb.Paths         `json:"paths"`
	FirstSeen time.Time         `json:"first_seen"`
	Channel   string            `json:"channel,omitempty"`
}

// AdapterSummary counts the frontends known for one adapter
type AdapterSummary struct {
	ID        uint16 `json:"id"`
	Frontends int    `json:"frontends"`
}

// Change describes the effect of applying one event
type Change struct {
	Event   domain.DiscoveryEvent `json:"-"`
	Added   *Frontend             `json:"added,omitempty"`
	Removed []domain.FrontendID   `json:"removed,omitempty"`
}

// Empty reports whether the event changed nothing
func (c Change) Empty() bool {
	return c.Added == nil && len(c.Removed) == 0
}

// Inventory is safe for concurrent use
type Inventory struct {
	mu        sync.RWMutex
	resolver  dvb.Resolver
	frontends map[domain.FrontendID]*Frontend
	now       func() time.Time
}

// New creates an empty inventory resolving paths with resolver
func New(resolver dvb.Resolver) *Inventory {
	return &Inventory{
		resolver:  resolver,
		frontends: make(map[domain.FrontendID]*Frontend),
		now:       time.Now,
	}
}

// Base returns the device directory paths are resolved against
func (inv *Inventory) Base() string {
	return inv.resolver.Base
}

// Apply updates the inventory with one discovery event
func (inv *Inventory) Apply(ev domain.DiscoveryEvent) Change {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	change := Change{Event: ev}
	switch e := ev.(type) {
	case domain.FrontendAppeared:
		if _, exists := inv.frontends[e.ID]; exists {
			return change
		}
		fe := &Frontend{
			ID:        e.ID,
			Paths:     inv.resolver.PathsFor(e.ID),
			FirstSeen: inv.now(),
		}
		inv.frontends[e.ID] = fe
		added := *fe
		change.Added = &added

	case domain.AdapterDisappeared:
		for id := range inv.frontends {
			if id.Adapter == e.ID {
				change.Removed = append(change.Removed, id)
			}
		}
		slices.SortFunc(change.Removed, compareIDs)
		for _, id := range change.Removed {
			delete(inv.frontends, id)
		}
	}
	return change
}

// Consume applies events until the channel is closed or ctx ends.
// onChange, if set, is called after every applied event.
func (inv *Inventory) Consume(ctx context.Context, events <-chan domain.DiscoveryEvent, onChange func(Change)) error {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			change := inv.Apply(ev)
			if onChange != nil {
				onChange(change)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// List returns all known frontends ordered by adapter then frontend
func (inv *Inventory) List() []Frontend {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]Frontend, 0, len(inv.frontends))
	for _, fe := range inv.frontends {
		out = append(out, *fe)
	}
	slices.SortFunc(out, func(a, b Frontend) int { return compareIDs(a.ID, b.ID) })
	return out
}

// Get returns one frontend
func (inv *Inventory) Get(id domain.FrontendID) (Frontend, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	fe, ok := inv.frontends[id]
	if !ok {
		return Frontend{}, false
	}
	return *fe, true
}

// Len returns the number of known frontends
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.frontends)
}

// Adapters summarises known frontends per adapter, ordered by adapter
func (inv *Inventory) Adapters() []AdapterSummary {
	inv.mu.RLock()
	counts := make(map[uint16]int)
	for id := range inv.frontends {
		counts[id.Adapter]++
	}
	inv.mu.RUnlock()

	out := make([]AdapterSummary, 0, len(counts))
	for id, n := range counts {
		out = append(out, AdapterSummary{ID: id, Frontends: n})
	}
	slices.SortFunc(out, func(a, b AdapterSummary) int { return int(a.ID) - int(b.ID) })
	return out
}

// Tune records that a frontend is tuned to a channel. The request itself
// is carried out by the recorder; this only tracks which frontend is busy.
func (inv *Inventory) Tune(t domain.TuningID) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	fe, ok := inv.frontends[t.Frontend]
	if !ok {
		return fmt.Errorf("tune %s: %w", t, ErrUnknownFrontend)
	}
	fe.Channel = t.Channel
	return nil
}

// Release clears the tuning of a frontend
func (inv *Inventory) Release(id domain.FrontendID) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	fe, ok := inv.frontends[id]
	if !ok {
		return fmt.Errorf("release %s: %w", id, ErrUnknownFrontend)
	}
	fe.Channel = ""
	return nil
}

// Tunings lists the current tunings ordered by frontend
func (inv *Inventory) Tunings() []domain.TuningID {
	var out []domain.TuningID
	for _, fe := range inv.List() {
		if fe.Channel != "" {
			out = append(out, domain.TuningID{Frontend: fe.ID, Channel: fe.Channel})
		}
	}
	return out
}

func compareIDs(a, b domain.FrontendID) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
