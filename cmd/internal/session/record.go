package session

import "time"

// Status is the lifecycle state of a device-session record.
type Status string

const (
	// StatusActive is a live session holding one of the user's device seats.
	StatusActive Status = "active"
	// StatusEvicted is a session terminated by an explicit force-evict.
	StatusEvicted Status = "evicted"
	// StatusExpired is a session whose heartbeats lapsed past the timeout.
	StatusExpired Status = "expired"
)

// Terminal reports whether the status ends the record instance.
// A later login from the same device reactivates the row as a logically
// fresh record.
func (s Status) Terminal() bool {
	return s == StatusEvicted || s == StatusExpired
}

// Record mirrors the warden.device_sessions row.
//
// There is at most one record per (UserID, DeviceID) pair; a repeat login
// from the same device updates the existing record rather than creating a
// duplicate.
type Record struct {
	ID         string
	UserID     string
	DeviceID   string
	Status     Status
	CreatedAt  time.Time
	LastSeenAt time.Time

	// StatusChangedAt tracks when Status last transitioned; the retention
	// window for terminal records is measured from here.
	StatusChangedAt time.Time
}
