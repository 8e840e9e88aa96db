// Package app wires the Warden runtime: config, logging, the session store,
// HTTP routes, and the notification gateway.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"warden/cmd/internal/notify"
	"warden/cmd/internal/session"
	sessionapi "warden/cmd/internal/session/api"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App is the Warden runtime: it owns the HTTP server wiring, the session
// arbiter, and the store lifecycle.
type App struct {
	cfg Config
	log Logger

	backend *storeBackend

	arbiter  *session.Service
	reaper   *session.Reaper
	sessions *sessionapi.Handler
	ws       *notify.WSGateway
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	apiCfg, err := sessionapi.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	backend, err := newStoreBackend(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	hub := notify.NewHub(log)
	arbiter := session.NewService(sessCfg, backend.store, hub, log)

	return &App{
		cfg:      cfg,
		log:      log,
		backend:  backend,
		arbiter:  arbiter,
		reaper:   session.NewReaper(sessCfg, backend.store, log),
		sessions: sessionapi.NewHandler(log, apiCfg, arbiter),
		ws:       notify.NewWSGateway(log, hub),
	}, nil
}

// Run starts the reaper and HTTP server, blocking until context cancellation
// or fatal server error.
func (a *App) Run(ctx context.Context) error {
	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go a.reaper.Run(reaperCtx)

	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.backend, a.sessions, a.ws)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "store", a.backend.kind)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.backend.close(); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// storeBackend bundles the chosen session.Store with the resources behind
// it, so readiness checks and shutdown can reach the underlying clients.
type storeBackend struct {
	kind    string
	durable bool
	store   session.Store

	dbPool *pgxpool.Pool
	rdb    *redis.Client
}

// newStoreBackend decides between Postgres, Redis, and in-memory persistence.
// Ownership model: the backend owns pool/client lifecycle; store Close
// methods for pooled backends are no-ops.
func newStoreBackend(ctx context.Context, cfg Config, log Logger) (*storeBackend, error) {
	if cfg.DatabaseURL != "" {
		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("store.postgres")
		return &storeBackend{
			kind:    "postgres",
			durable: true,
			store:   session.NewPostgresStore(pool),
			dbPool:  pool,
		}, nil
	}

	if cfg.RedisAddr != "" {
		client, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("store.redis", "addr", cfg.RedisAddr)
		return &storeBackend{
			kind:    "redis",
			durable: true,
			store:   session.NewRedisStore(client),
			rdb:     client,
		}, nil
	}

	log.Info("store.inmemory")
	return &storeBackend{
		kind:  "memory",
		store: session.NewMemoryStore(),
	}, nil
}

func (b *storeBackend) ready(ctx context.Context, timeout time.Duration) error {
	switch {
	case b.dbPool != nil:
		return PingDB(ctx, b.dbPool, timeout)
	case b.rdb != nil:
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return b.rdb.Ping(pctx).Err()
	default:
		return nil
	}
}

func (b *storeBackend) close() error {
	err := b.store.Close()
	if b.dbPool != nil {
		b.dbPool.Close()
	}
	return err
}
