package session

import (
	"context"
	"time"
)

// Store abstracts persistence for device-session records.
//
// Implementations must return real errors when the backing store is
// unreachable; the arbitrator never interprets a store failure as "no
// active sessions". Per-user serialization is handled by the caller, so
// individual operations only need to be atomic on their own.
type Store interface {
	// GetActiveByUser returns records with stored status "active" for the
	// user, ordered by created_at ascending (deterministic tie-break by
	// device_id). Lapsed records are included; liveness is the caller's
	// concern.
	GetActiveByUser(ctx context.Context, userID string) ([]Record, error)

	// Get loads the record for the (user, device) pair regardless of
	// status. Returns ErrNotFound when absent.
	Get(ctx context.Context, userID, deviceID string) (Record, error)

	// Upsert creates or replaces the record for (rec.UserID, rec.DeviceID).
	Upsert(ctx context.Context, rec Record) error

	// Touch updates last_seen_at for an active record.
	Touch(ctx context.Context, userID, deviceID string, at time.Time) error

	// SetStatus transitions the record's status, stamping status_changed_at.
	SetStatus(ctx context.Context, userID, deviceID string, status Status, at time.Time) error

	// Delete removes the record (idempotent).
	Delete(ctx context.Context, userID, deviceID string) error

	// PurgeInactiveBefore deletes terminal records whose status changed
	// before cutoff and reports how many were removed.
	PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases store resources.
	Close() error
}
