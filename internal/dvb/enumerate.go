package dvb

import (
	"io/fs"
	"iter"
	"log"
	"math"
	"os"

	"metv/internal/domain"
)

// StatFunc queries filesystem metadata for a path
type StatFunc func(name string) (fs.FileInfo, error)

// Sink receives discovery events in order.
// A non-nil error means the consumer can no longer accept events.
type Sink interface {
	Deliver(ev domain.DiscoveryEvent) error
}

// Enumerator walks adapter and frontend indices under a base directory
type Enumerator struct {
	Resolver
	stat  StatFunc
	debug bool
}

// NewEnumerator creates an enumerator over the given base directory
func NewEnumerator(base string) *Enumerator {
	return &Enumerator{
		Resolver: Resolver{Base: base},
		stat:     os.Stat,
	}
}

// WithStat replaces the metadata query, mostly for tests
func (e *Enumerator) WithStat(stat StatFunc) *Enumerator {
	e.stat = stat
	return e
}

// WithDebug enables logging of skipped entries
func (e *Enumerator) WithDebug(debug bool) *Enumerator {
	e.debug = debug
	return e
}

// IsCharDevice reports whether info describes a character-special file
func IsCharDevice(info fs.FileInfo) bool {
	return info.Mode()&fs.ModeCharDevice != 0
}

// Frontends yields one FrontendAppeared per character device found at
// frontend indices 0, 1, 2, ... of the adapter. The first index whose path
// cannot be stat'ed ends the sequence. Entries of another file type are
// skipped without ending it.
func (e *Enumerator) Frontends(adapter uint16) iter.Seq[domain.FrontendAppeared] {
	return func(yield func(domain.FrontendAppeared) bool) {
		id := domain.FrontendID{Adapter: adapter}
		for {
			path := e.FrontendPath(id)
			info, err := e.stat(path)
			if err != nil {
				return
			}

			if IsCharDevice(info) {
				if !yield(domain.FrontendAppeared{ID: id}) {
					return
				}
			} else if e.debug {
				log.Printf("dvb: skipping %s (mode %s)", path, info.Mode().Type())
			}

			if id.Frontend == math.MaxUint16 {
				return
			}
			id.Frontend++
		}
	}
}

// Present reports whether the frontend node exists as a character device
func (e *Enumerator) Present(id domain.FrontendID) bool {
	info, err := e.stat(e.FrontendPath(id))
	return err == nil && IsCharDevice(info)
}

// AddFrontends delivers every frontend of an adapter to the sink, in index
// order. It returns how many events were delivered and the first delivery
// error.
func (e *Enumerator) AddFrontends(adapter uint16, sink Sink) (int, error) {
	delivered := 0
	for ev := range e.Frontends(adapter) {
		if err := sink.Deliver(ev); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
