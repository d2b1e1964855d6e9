package frontend

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"metv/internal/domain"
	"metv/internal/dvb"
)

// ErrDeliveryFailed wraps any error returned by the sink
var ErrDeliveryFailed = errors.New("frontend manager: delivery failed")

// State is the lifecycle state of a Manager
type State int32

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Stats counts what the manager has handled so far
type Stats struct {
	HotplugEvents     uint64 `json:"hotplug_events"`
	FrontendsReported uint64 `json:"frontends_reported"`
	AdaptersRemoved   uint64 `json:"adapters_removed"`
	SettleTimeouts    uint64 `json:"settle_timeouts"`
	StartupFrontends  uint64 `json:"startup_frontends"`
	StartupAdapters   uint64 `json:"startup_adapters"`
}

// Manager forwards discovery events derived from hotplug events
type Manager struct {
	enum   *dvb.Enumerator
	in     <-chan domain.HotplugEvent
	sink   dvb.Sink
	settle Settle
	debug  bool

	state             atomic.Int32
	hotplugEvents     atomic.Uint64
	frontendsReported atomic.Uint64
	adaptersRemoved   atomic.Uint64
	settleTimeouts    atomic.Uint64
	startupFrontends  atomic.Uint64
	startupAdapters   atomic.Uint64
}

// New creates a manager reading from in and delivering to sink
func New(enum *dvb.Enumerator, in <-chan domain.HotplugEvent, sink dvb.Sink) *Manager {
	return &Manager{
		enum:   enum,
		in:     in,
		sink:   sink,
		settle: DefaultSettle(),
	}
}

// WithSettle sets the settle policy
func (m *Manager) WithSettle(s Settle) *Manager {
	m.settle = s
	return m
}

// WithDebug enables per-event logging
func (m *Manager) WithDebug(debug bool) *Manager {
	m.debug = debug
	return m
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Stats returns a snapshot of the counters
func (m *Manager) Stats() Stats {
	return Stats{
		HotplugEvents:     m.hotplugEvents.Load(),
		FrontendsReported: m.frontendsReported.Load(),
		AdaptersRemoved:   m.adaptersRemoved.Load(),
		SettleTimeouts:    m.settleTimeouts.Load(),
		StartupFrontends:  m.startupFrontends.Load(),
		StartupAdapters:   m.startupAdapters.Load(),
	}
}

// Run performs the startup scan and then handles hotplug events until the
// inbound channel is closed, which returns nil. A failed delivery returns an
// error wrapping ErrDeliveryFailed.
func (m *Manager) Run() error {
	defer m.state.Store(int32(StateTerminated))

	result, err := m.enum.Scan(m.sink)
	m.startupAdapters.Store(uint64(result.Adapters))
	m.startupFrontends.Store(uint64(result.Frontends))
	m.frontendsReported.Add(uint64(result.Frontends))
	if err != nil {
		return fmt.Errorf("%w: startup scan: %w", ErrDeliveryFailed, err)
	}
	log.Printf("Frontend manager: startup scan of %s found %d adapters, %d frontends",
		m.enum.Base, result.Adapters, result.Frontends)

	for ev := range m.in {
		m.hotplugEvents.Add(1)
		if err := m.handle(ev); err != nil {
			log.Printf("Frontend manager: delivery failed, terminating: %v", err)
			return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
		}
	}

	log.Println("Frontend manager: hotplug channel closed, terminated")
	return nil
}

func (m *Manager) handle(ev domain.HotplugEvent) error {
	switch e := ev.(type) {
	case domain.AdapterAppeared:
		return m.adapterAppeared(e.ID)

	case domain.AdapterDisappeared:
		if m.debug {
			log.Printf("Frontend manager: adapter%d disappeared", e.ID)
		}
		if err := m.sink.Deliver(e); err != nil {
			return err
		}
		m.adaptersRemoved.Add(1)
		return nil

	default:
		log.Printf("Frontend manager: ignoring unknown hotplug event %T", ev)
		return nil
	}
}

func (m *Manager) adapterAppeared(adapter uint16) error {
	start := time.Now()
	first := domain.FrontendID{Adapter: adapter}
	ready := m.settle.wait(func() int {
		if !m.enum.Present(first) {
			return 0
		}
		n := 0
		for range m.enum.Frontends(adapter) {
			n++
		}
		return n
	})
	if !ready {
		m.settleTimeouts.Add(1)
		log.Printf("Frontend manager: %s not ready after %s, enumerating anyway",
			m.enum.FrontendPath(first), m.settle.Timeout)
	}

	n, err := m.enum.AddFrontends(adapter, m.sink)
	m.frontendsReported.Add(uint64(n))
	if err != nil {
		return err
	}

	log.Printf("Frontend manager: adapter%d appeared with %d frontends (settled in %s)",
		adapter, n, time.Since(start).Round(time.Millisecond))
	return nil
}
