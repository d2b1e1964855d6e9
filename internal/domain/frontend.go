package domain

import "fmt"

// FrontendID identifies one frontend of one adapter
type FrontendID struct {
	Adapter  uint16 `json:"adapter"`
	Frontend uint16 `json:"frontend"`
}

// String renders the id as it appears under the device base directory
func (id FrontendID) String() string {
	return fmt.Sprintf("adapter%d/frontend%d", id.Adapter, id.Frontend)
}

// Less orders ids by adapter, then frontend
func (id FrontendID) Less(other FrontendID) bool {
	if id.Adapter != other.Adapter {
		return id.Adapter < other.Adapter
	}
	return id.Frontend < other.Frontend
}

// TuningID pairs a frontend with a logical channel name
type TuningID struct {
	Frontend FrontendID `json:"frontend"`
	Channel  string     `json:"channel"`
}

// String returns a human-readable form for logs
func (t TuningID) String() string {
	return fmt.Sprintf("%s@%q", t.Frontend, t.Channel)
}
