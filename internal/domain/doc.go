// Package domain defines the value types exchanged by the tuner discovery
// subsystem.
//
// # Identities
//
// FrontendID names one tunable receiver as an (adapter, frontend) index pair.
// TuningID pairs a frontend with a logical channel name. Both are comparable
// values and can be used as map keys.
//
// # Messages
//
// HotplugEvent is what the hotplug watcher reports about adapter directories
// appearing and disappearing. DiscoveryEvent is what the frontend manager
// forwards to its consumer. AdapterDisappeared satisfies both interfaces and
// is forwarded unchanged.
//
// # Design Principles
//
// - Value semantics, no ownership of external resources
// - No filesystem or channel dependencies
// - Sealed interfaces so only this package defines message variants
package domain
