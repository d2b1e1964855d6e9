// Package service connects the frontend manager's output to everything that
// reacts to it.
//
// # Discovery
//
// DiscoveryService is the consumer end of the manager's sink. For every
// discovery event it updates the inventory, appends a journal entry and
// publishes an Event on the bus. It also handles tuning requests coming from
// the HTTP API.
//
// # Event System
//
// EventBus fans events out to subscribers without blocking the publisher; a
// slow subscriber misses events rather than stalling discovery. The SSE hub
// is the main subscriber.
package service
