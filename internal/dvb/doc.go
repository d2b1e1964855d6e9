// Package dvb maps tuner identities onto the device namespace and enumerates
// the frontends that exist there.
//
// The namespace is a base directory (normally /dev/dvb) holding adapterN
// directories, each holding frontendM, demuxM and dvrM character devices.
// Indices are dense from zero: the first missing index ends a range.
//
// Nothing in this package opens a device. It only stats paths.
package dvb
