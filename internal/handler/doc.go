// Package handler implements the read-mostly HTTP status API of the
// hotplug daemon.
//
// # Routes
//
//	GET    /health                               manager state and counters
//	GET    /api/frontends                        available frontends with device paths
//	GET    /api/frontends/{adapter}/{frontend}   one frontend, 404 if unknown
//	GET    /api/adapters                         adapters with frontend counts
//	GET    /api/tunings                          current tunings
//	POST   /api/tunings                          record a tuning
//	DELETE /api/tunings/{adapter}/{frontend}     release a tuning
//	GET    /api/journal?limit=N                  recent discovery history
//	GET    /api/journal/stats                    history counts per event kind
//	GET    /api/export/{format}                  inventory snapshot as json or yaml
//	GET    /events                               SSE stream of discovery events
//
// Errors are returned as JSON with an {error, details} structure.
package handler
