package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_ActiveOrdering(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	t0 := time.Now().UTC()

	recs := []Record{
		{ID: "3", UserID: "u1", DeviceID: "c", Status: StatusActive, CreatedAt: t0.Add(2 * time.Second), LastSeenAt: t0},
		{ID: "1", UserID: "u1", DeviceID: "a", Status: StatusActive, CreatedAt: t0, LastSeenAt: t0},
		{ID: "2", UserID: "u1", DeviceID: "b", Status: StatusActive, CreatedAt: t0.Add(time.Second), LastSeenAt: t0},
		{ID: "4", UserID: "u1", DeviceID: "d", Status: StatusEvicted, CreatedAt: t0, LastSeenAt: t0},
	}
	for _, rec := range recs {
		if err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert %s: %v", rec.DeviceID, err)
		}
	}

	got, err := store.GetActiveByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("active count: got=%d want=3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].DeviceID != want {
			t.Fatalf("order[%d]: got=%q want=%q", i, got[i].DeviceID, want)
		}
	}
}

func TestMemoryStore_ActiveOrderingTieBreak(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	t0 := time.Now().UTC()

	for _, dev := range []string{"b", "a"} {
		rec := Record{ID: dev, UserID: "u1", DeviceID: dev, Status: StatusActive, CreatedAt: t0, LastSeenAt: t0}
		if err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, err := store.GetActiveByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if got[0].DeviceID != "a" || got[1].DeviceID != "b" {
		t.Fatalf("tie-break order: got=%s,%s want=a,b", got[0].DeviceID, got[1].DeviceID)
	}
}

func TestMemoryStore_TouchOnlyActive(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	t0 := time.Now().UTC()

	rec := Record{ID: "1", UserID: "u1", DeviceID: "a", Status: StatusEvicted, CreatedAt: t0, LastSeenAt: t0}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := store.Touch(ctx, "u1", "a", t0.Add(time.Minute)); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, err := store.Get(ctx, "u1", "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.LastSeenAt.Equal(t0) {
		t.Fatalf("evicted record was touched: %v", got.LastSeenAt)
	}
}

func TestMemoryStore_SetStatusStampsChange(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	t0 := time.Now().UTC()
	t1 := t0.Add(time.Minute)

	rec := Record{ID: "1", UserID: "u1", DeviceID: "a", Status: StatusActive, CreatedAt: t0, LastSeenAt: t0, StatusChangedAt: t0}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := store.SetStatus(ctx, "u1", "a", StatusExpired, t1); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err := store.Get(ctx, "u1", "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusExpired || !got.StatusChangedAt.Equal(t1) {
		t.Fatalf("status=%q changed_at=%v", got.Status, got.StatusChangedAt)
	}

	if err := store.SetStatus(ctx, "u1", "ghost", StatusExpired, t1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("set status missing: err=%v", err)
	}
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Delete(ctx, "u1", "a"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestMemoryStore_PurgeInactiveBefore(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	t0 := time.Now().UTC()
	cutoff := t0.Add(-time.Hour)

	recs := []Record{
		{ID: "1", UserID: "u1", DeviceID: "old-evicted", Status: StatusEvicted, CreatedAt: t0, LastSeenAt: t0, StatusChangedAt: cutoff.Add(-time.Minute)},
		{ID: "2", UserID: "u1", DeviceID: "fresh-evicted", Status: StatusEvicted, CreatedAt: t0, LastSeenAt: t0, StatusChangedAt: t0},
		{ID: "3", UserID: "u1", DeviceID: "active", Status: StatusActive, CreatedAt: t0, LastSeenAt: t0, StatusChangedAt: cutoff.Add(-time.Minute)},
	}
	for _, rec := range recs {
		if err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	n, err := store.PurgeInactiveBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged: got=%d want=1", n)
	}

	if _, err := store.Get(ctx, "u1", "old-evicted"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old-evicted should be gone: err=%v", err)
	}
	if _, err := store.Get(ctx, "u1", "fresh-evicted"); err != nil {
		t.Fatalf("fresh-evicted should remain: %v", err)
	}
	if _, err := store.Get(ctx, "u1", "active"); err != nil {
		t.Fatalf("active should remain: %v", err)
	}
}

func TestMemoryStore_HonorsContextCancellation(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.GetActiveByUser(ctx, "u1"); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if err := store.Upsert(ctx, Record{UserID: "u1", DeviceID: "a"}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
