package domain

// EventKind is the stable name of a discovery event variant
type EventKind string

const (
	KindAdapterDisappeared EventKind = "adapter_disappeared"
	KindFrontendAppeared   EventKind = "frontend_appeared"
)

// HotplugEvent is reported by the hotplug watcher.
// Implemented by AdapterAppeared and AdapterDisappeared.
type HotplugEvent interface {
	hotplugEvent()
}

// DiscoveryEvent is forwarded by the frontend manager to its consumer.
// Implemented by AdapterDisappeared and FrontendAppeared.
type DiscoveryEvent interface {
	Kind() EventKind
	discoveryEvent()
}

// AdapterAppeared reports a new adapterN directory
type AdapterAppeared struct {
	ID uint16 `json:"id"`
}

func (AdapterAppeared) hotplugEvent() {}

// AdapterDisappeared reports the removal of an adapterN directory.
// It travels both inbound and outbound.
type AdapterDisappeared struct {
	ID uint16 `json:"id"`
}

func (AdapterDisappeared) hotplugEvent()   {}
func (AdapterDisappeared) discoveryEvent() {}
func (AdapterDisappeared) Kind() EventKind { return KindAdapterDisappeared }

// FrontendAppeared reports a frontend device node found by enumeration
type FrontendAppeared struct {
	ID FrontendID `json:"id"`
}

func (FrontendAppeared) discoveryEvent() {}
func (FrontendAppeared) Kind() EventKind { return KindFrontendAppeared }

// EventAdapter returns the adapter index an event refers to
func EventAdapter(ev DiscoveryEvent) uint16 {
	switch e := ev.(type) {
	case AdapterDisappeared:
		return e.ID
	case FrontendAppeared:
		return e.ID.Adapter
	}
	return 0
}
