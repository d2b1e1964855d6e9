// Package codec renders inventory snapshots in export formats.
package codec

import (
	"io"
	"time"

	"metv/internal/domain"
	"metv/internal/inventory"
)

// Snapshot is a point-in-time copy of the inventory
type Snapshot struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Base        string                     `json:"base"`
	Frontends   []inventory.Frontend       `json:"frontends"`
	Adapters    []inventory.AdapterSummary `json:"adapters"`
	Tunings     []domain.TuningID          `json:"tunings"`
}

// Take copies the current state of inv
func Take(inv *inventory.Inventory, base string, at time.Time) *Snapshot {
	return &Snapshot{
		GeneratedAt: at.UTC(),
		Base:        base,
		Frontends:   inv.List(),
		Adapters:    inv.Adapters(),
		Tunings:     inv.Tunings(),
	}
}

// Exporter writes snapshots in one format
type Exporter interface {
	Export(s *Snapshot, w io.Writer) error
	Format() string
	ContentType() string
}

// Lookup returns the exporter for a format name
func Lookup(format string) (Exporter, bool) {
	switch format {
	case "json":
		return NewJSONCodec(), true
	case "yaml", "yml":
		return NewYAMLCodec(), true
	default:
		return nil, false
	}
}
