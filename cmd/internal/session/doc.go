// Package session implements Warden's N-device session arbitration.
//
// It tracks one record per (user, device), enforces a per-user cap on
// simultaneously active devices, and detects liveness by comparing the last
// heartbeat timestamp against a timeout at read time. There are no per-device
// timers: expiry is evaluated lazily inside Login and Heartbeat, so only
// storage growth (not correctness) depends on the background reaper.
//
// Transport (HTTP) integration is intentionally out of scope here.
package session
