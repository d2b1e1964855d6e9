// Package repository defines the discovery journal.
//
// The journal is an append-only history of the discovery events forwarded
// by the frontend manager, kept for operators. It is never read back to
// rebuild the inventory: after a restart the startup scan is the only source
// of truth about present hardware.
//
// # SQLite Implementation
//
// The sqlite subpackage implements Journal on modernc.org/sqlite with WAL
// mode. Tests use in-memory databases.
package repository
