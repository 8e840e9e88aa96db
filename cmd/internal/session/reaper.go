package session

import (
	"context"
	"log/slog"
	"time"
)

// Reaper periodically deletes terminal records older than the retention
// window. Pure housekeeping: sessions become invisible to arbitration the
// moment they turn terminal, so nothing depends on when the reaper runs.
type Reaper struct {
	cfg   Config
	store Store
	log   *slog.Logger
}

// NewReaper constructs a reaper over the given store.
func NewReaper(cfg Config, store Store, log *slog.Logger) *Reaper {
	if log == nil {
		log = slog.Default()
	}
	return &Reaper{cfg: cfg, store: store, log: log}
}

// Run purges on the configured cadence until ctx is canceled. Returns
// immediately when the reaper is disabled (ReapEvery <= 0).
func (r *Reaper) Run(ctx context.Context) {
	if r.cfg.ReapEvery <= 0 {
		return
	}

	r.runOnce(ctx, time.Now().UTC())

	ticker := time.NewTicker(r.cfg.ReapEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.runOnce(ctx, now.UTC())
		}
	}
}

func (r *Reaper) runOnce(ctx context.Context, now time.Time) {
	cctx, cancel := context.WithTimeout(ctx, r.cfg.StoreTimeout)
	defer cancel()

	cutoff := now.Add(-r.cfg.RetentionWindow)
	n, err := r.store.PurgeInactiveBefore(cctx, cutoff)
	if err != nil {
		r.log.Warn("reaper.purge.fail", "error", err)
		return
	}
	if n > 0 {
		r.log.Info("reaper.purged", "count", n, "cutoff", cutoff)
	}
}
