package connectivity

import "time"

// Event is published to subscribers on every classification change.
type Event struct {
	Previous  Classification `json:"previous"`
	Current   Classification `json:"current"`
	Connected bool           `json:"connected"`
	Interface string         `json:"interface,omitempty"`
	At        time.Time      `json:"at"`
	Snapshot  bool           `json:"snapshot,omitempty"`
}

// Status is a point-in-time view of the tracker.
type Status struct {
	Initialized    bool           `json:"initialized"`
	Classification Classification `json:"classification"`
	Connected      bool           `json:"connected"`
	Interface      string         `json:"interface,omitempty"`
	ChangedAt      time.Time      `json:"changedAt,omitempty"`
	Listeners      int            `json:"listeners"`
}
