package presence

import "sync/atomic"

// Metrics counts the silent failure modes of the real-time layer.
//
// The wire contract stays best-effort (a dropped direct message produces no
// client-visible error), so these counters are the only signal that anything
// was discarded. They are read by the admin stats endpoint.
type Metrics struct {
	// announcesRejected counts announce frames ignored for missing fields.
	announcesRejected atomic.Int64

	// directDropped counts direct messages discarded because the recipient
	// had no live connection.
	directDropped atomic.Int64

	// directDelivered counts direct messages handed to a recipient connection.
	directDelivered atomic.Int64

	// eventsRelayed counts domain events accepted for fan-out.
	eventsRelayed atomic.Int64

	// slowClientDrops counts frames dropped because a client's send queue was full.
	slowClientDrops atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	AnnouncesRejected int64 `json:"announcesRejected"`
	DirectDropped     int64 `json:"directDropped"`
	DirectDelivered   int64 `json:"directDelivered"`
	EventsRelayed     int64 `json:"eventsRelayed"`
	SlowClientDrops   int64 `json:"slowClientDrops"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		AnnouncesRejected: m.announcesRejected.Load(),
		DirectDropped:     m.directDropped.Load(),
		DirectDelivered:   m.directDelivered.Load(),
		EventsRelayed:     m.eventsRelayed.Load(),
		SlowClientDrops:   m.slowClientDrops.Load(),
	}
}
