package dvb

import (
	"iter"
	"math"
)

// Adapters yields adapter indices 0, 1, 2, ... while their directories
// exist. Nothing is yielded when the base directory is missing.
func (e *Enumerator) Adapters() iter.Seq[uint16] {
	return func(yield func(uint16) bool) {
		if _, err := e.stat(e.Base); err != nil {
			return
		}

		for adapter := uint16(0); ; adapter++ {
			if _, err := e.stat(e.AdapterPath(adapter)); err != nil {
				return
			}
			if !yield(adapter) {
				return
			}
			if adapter == math.MaxUint16 {
				return
			}
		}
	}
}

// ScanResult summarises a startup scan
type ScanResult struct {
	Adapters  int `json:"adapters"`
	Frontends int `json:"frontends"`
}

// Scan reports all hardware already present: every frontend of every
// adapter found by Adapters, in (adapter, frontend) order.
func (e *Enumerator) Scan(sink Sink) (ScanResult, error) {
	var result ScanResult
	for adapter := range e.Adapters() {
		result.Adapters++
		n, err := e.AddFrontends(adapter, sink)
		result.Frontends += n
		if err != nil {
			return result, err
		}
	}
	return result, nil
}
