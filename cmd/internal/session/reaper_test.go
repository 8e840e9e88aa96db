package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReaper_RunOncePurgesOldTerminalRecords(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.RetentionWindow = time.Hour
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	recs := []Record{
		{ID: "1", UserID: "u1", DeviceID: "stale", Status: StatusExpired, CreatedAt: now, LastSeenAt: now, StatusChangedAt: now.Add(-2 * time.Hour)},
		{ID: "2", UserID: "u1", DeviceID: "recent", Status: StatusEvicted, CreatedAt: now, LastSeenAt: now, StatusChangedAt: now.Add(-time.Minute)},
		{ID: "3", UserID: "u1", DeviceID: "live", Status: StatusActive, CreatedAt: now, LastSeenAt: now, StatusChangedAt: now.Add(-2 * time.Hour)},
	}
	for _, rec := range recs {
		if err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	NewReaper(cfg, store, nil).runOnce(ctx, now)

	if _, err := store.Get(ctx, "u1", "stale"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stale should be purged: err=%v", err)
	}
	if _, err := store.Get(ctx, "u1", "recent"); err != nil {
		t.Fatalf("recent should survive: %v", err)
	}
	if _, err := store.Get(ctx, "u1", "live"); err != nil {
		t.Fatalf("live should survive: %v", err)
	}
}

func TestReaper_DisabledReturnsImmediately(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ReapEvery = 0

	done := make(chan struct{})
	go func() {
		NewReaper(cfg, NewMemoryStore(), nil).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled reaper did not return")
	}
}

func TestReaper_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ReapEvery = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewReaper(cfg, NewMemoryStore(), nil).Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}
