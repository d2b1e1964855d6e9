package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"metv/internal/domain"
)

// Entry is one journaled discovery event
type Entry struct {
	ID         string           `json:"id"`
	Kind       domain.EventKind `json:"kind"`
	Adapter    uint16           `json:"adapter"`
	Frontend   *uint16          `json:"frontend,omitempty"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// EntryFor builds a journal entry for a discovery event
func EntryFor(ev domain.DiscoveryEvent, at time.Time) Entry {
	entry := Entry{
		ID:         uuid.NewString(),
		Kind:       ev.Kind(),
		Adapter:    domain.EventAdapter(ev),
		RecordedAt: at.UTC(),
	}
	if fe, ok := ev.(domain.FrontendAppeared); ok {
		f := fe.ID.Frontend
		entry.Frontend = &f
	}
	return entry
}

// Journal defines the interface for discovery history
type Journal interface {
	// Record appends an entry
	Record(ctx context.Context, entry Entry) error

	// Recent returns up to limit entries, newest first
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// CountByKind returns how many entries exist per event kind
	CountByKind(ctx context.Context) (map[domain.EventKind]int, error)

	// Close releases resources
	Close() error
}
