// Package notify delivers session termination events to connected devices.
//
// Delivery is best-effort and additive: the poll-based heartbeat contract
// remains authoritative, push only shortens the time to the client noticing.
package notify

import "time"

// EventType classifies a terminal session transition.
type EventType string

const (
	EventEvicted EventType = "evicted"
	EventExpired EventType = "expired"
)

// Event describes one session ending.
type Event struct {
	Type     EventType `json:"type"`
	UserID   string    `json:"user_id"`
	DeviceID string    `json:"device_id"`
	At       time.Time `json:"at"`
}

// Emitter receives termination events. Emit must not block: it is called
// while the arbiter holds the user's lock.
type Emitter interface {
	Emit(ev Event)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) Emit(Event) {}
