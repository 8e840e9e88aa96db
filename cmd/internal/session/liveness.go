package session

import "time"

// EvaluateAt returns the effective status of rec at the given instant.
//
// An active record whose last heartbeat is strictly older than timeout is
// reported Expired; every other status passes through unchanged. The
// function is pure: callers decide whether to persist the transition.
func EvaluateAt(rec Record, now time.Time, timeout time.Duration) Status {
	if rec.Status != StatusActive {
		return rec.Status
	}
	if now.Sub(rec.LastSeenAt) > timeout {
		return StatusExpired
	}
	return StatusActive
}
