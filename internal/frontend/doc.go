// Package frontend implements the frontend manager: the worker that turns
// hotplug notifications about adapter directories into discovery events
// about individual frontends.
//
// # Lifecycle
//
// Run first reports every frontend already present (the startup scan), then
// consumes the inbound hotplug channel until it is closed. There is no other
// way to stop it. Events are handled strictly one at a time in receipt
// order, so frontends of one adapter are always reported in index order and
// a burst of hotplug activity is delayed rather than dropped.
//
// # Settling
//
// The kernel announces an adapter directory before its frontend nodes are
// usable. Before enumerating a new adapter the manager waits according to a
// Settle policy: either poll for frontend0 up to a timeout, or sleep for a
// fixed duration.
//
// # Delivery
//
// Events go to a dvb.Sink. A delivery error ends Run with an error wrapping
// ErrDeliveryFailed; the caller decides whether that stops the process.
package frontend
