package models

// MTickBatch is the unit published to subscribers: every instrument updated
// for one tick, plus the injected event when one fired. Seq is strictly
// increasing for the lifetime of a scheduler.
type MTickBatch struct {
	Seq       int64           `json:"seq"`
	Timestamp int64           `json:"timestamp"` // epoch-ms
	Updates   []MMarketUpdate `json:"updates"`
	Event     *MMarketEvent   `json:"event,omitempty"`
}
