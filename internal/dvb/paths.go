package dvb

import (
	"strconv"

	"metv/internal/domain"
)

// DefaultBasePath is where the kernel creates DVB device nodes
const DefaultBasePath = "/dev/dvb"

// Resolver maps identities to device paths under Base
type Resolver struct {
	Base string
}

// AdapterPath returns the directory of an adapter
func (r Resolver) AdapterPath(adapter uint16) string {
	return r.Base + "/adapter" + strconv.FormatUint(uint64(adapter), 10)
}

// FrontendPath returns the frontend control node
func (r Resolver) FrontendPath(id domain.FrontendID) string {
	return r.node(id, "frontend")
}

// DemuxPath returns the demultiplexer node paired with a frontend
func (r Resolver) DemuxPath(id domain.FrontendID) string {
	return r.node(id, "demux")
}

// DVRPath returns the raw transport stream node paired with a frontend
func (r Resolver) DVRPath(id domain.FrontendID) string {
	return r.node(id, "dvr")
}

func (r Resolver) node(id domain.FrontendID, kind string) string {
	return r.AdapterPath(id.Adapter) + "/" + kind + strconv.FormatUint(uint64(id.Frontend), 10)
}

// Paths is the set of device nodes belonging to one frontend
type Paths struct {
	Frontend string `json:"frontend"`
	Demux    string `json:"demux"`
	DVR      string `json:"dvr"`
}

// PathsFor resolves all device nodes of a frontend
func (r Resolver) PathsFor(id domain.FrontendID) Paths {
	return Paths{
		Frontend: r.FrontendPath(id),
		Demux:    r.DemuxPath(id),
		DVR:      r.DVRPath(id),
	}
}
