package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"warden/cmd/internal/notify"

	"github.com/oklog/ulid/v2"
)

// LoginStatus is the arbitration outcome of a login attempt.
type LoginStatus string

const (
	// LoginAccepted means the device holds (or already held) a seat.
	LoginAccepted LoginStatus = "accepted"
	// LoginLimitExceeded means the device cap is reached and the caller
	// must explicitly evict another device first.
	LoginLimitExceeded LoginStatus = "limit_exceeded"
)

// LoginResult carries the arbitration outcome. Devices is populated only on
// LoginLimitExceeded, listing the user's active sessions for UI display,
// ordered by created_at ascending.
type LoginResult struct {
	Status  LoginStatus
	Devices []Record
}

// HeartbeatStatus is the observable session state returned to a beating
// device.
type HeartbeatStatus string

const (
	// HeartbeatActive means the session is live and last_seen_at was
	// refreshed.
	HeartbeatActive HeartbeatStatus = "active"
	// HeartbeatInactive signals the caller to treat its local session as
	// logged out.
	HeartbeatInactive HeartbeatStatus = "inactive"
)

// EvictStatus is the outcome of an explicit force-evict.
type EvictStatus string

const (
	// EvictDone means the target session was marked evicted.
	EvictDone EvictStatus = "evicted"
	// EvictNotFound means the user holds no active session for that device.
	EvictNotFound EvictStatus = "not_found"
)

// Service is the session arbitrator: it processes login and heartbeat
// requests, enforces the per-user device cap, decides which sessions
// survive, and emits terminal transitions.
//
// All mutating sequences for one user run under that user's arena lock, so
// two concurrent logins can never both observe a free seat that only one of
// them may take. Operations for different users do not contend.
type Service struct {
	cfg     Config
	store   Store
	emitter notify.Emitter
	log     *slog.Logger

	locks *lockArena
}

// NewService constructs a Service. A nil emitter disables notifications; a
// nil logger falls back to slog.Default.
func NewService(cfg Config, store Store, emitter notify.Emitter, log *slog.Logger) *Service {
	if emitter == nil {
		emitter = notify.NopEmitter{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:     cfg,
		store:   store,
		emitter: emitter,
		log:     log,
		locks:   newLockArena(),
	}
}

// Login arbitrates a login attempt from one device.
//
// Atomically per user: stale sessions are lazily expired, a re-login from a
// device that already holds a seat refreshes it (idempotent, does not count
// as a new device), a new device is admitted while the active count is below
// the cap, and otherwise the call fails softly with LoginLimitExceeded and
// the current active-device list, mutating nothing. Eviction of another
// device is never implicit.
func (s *Service) Login(ctx context.Context, now time.Time, userID, deviceID string) (LoginResult, error) {
	userID, deviceID, err := normalizeIDs(userID, deviceID)
	if err != nil {
		return LoginResult{}, err
	}

	l := s.locks.acquire(userID)
	defer s.locks.release(userID, l)

	active, err := s.loadLive(ctx, now, userID)
	if err != nil {
		return LoginResult{}, err
	}

	for _, rec := range active {
		if rec.DeviceID != deviceID {
			continue
		}
		if err := s.touch(ctx, userID, deviceID, now); err != nil {
			return LoginResult{}, err
		}
		s.log.Debug("arbiter.login.refresh", "user_id", userID, "device_id", deviceID)
		return LoginResult{Status: LoginAccepted}, nil
	}

	if len(active) >= s.cfg.MaxDevices {
		s.log.Info("arbiter.login.limit_exceeded", "user_id", userID, "device_id", deviceID, "active", len(active))
		return LoginResult{Status: LoginLimitExceeded, Devices: active}, nil
	}

	rec := Record{
		ID:              ulid.Make().String(),
		UserID:          userID,
		DeviceID:        deviceID,
		Status:          StatusActive,
		CreatedAt:       now,
		LastSeenAt:      now,
		StatusChangedAt: now,
	}
	if err := s.upsert(ctx, rec); err != nil {
		return LoginResult{}, err
	}

	s.log.Info("arbiter.login.accepted", "user_id", userID, "device_id", deviceID, "active", len(active)+1)
	return LoginResult{Status: LoginAccepted}, nil
}

// Heartbeat reports whether the device's session is still live and, if so,
// refreshes last_seen_at. Absent, terminal, or lapsed sessions yield
// HeartbeatInactive without refreshing anything.
func (s *Service) Heartbeat(ctx context.Context, now time.Time, userID, deviceID string) (HeartbeatStatus, error) {
	userID, deviceID, err := normalizeIDs(userID, deviceID)
	if err != nil {
		return "", err
	}

	l := s.locks.acquire(userID)
	defer s.locks.release(userID, l)

	rec, err := s.get(ctx, userID, deviceID)
	if errors.Is(err, ErrNotFound) {
		return HeartbeatInactive, nil
	}
	if err != nil {
		return "", err
	}

	switch EvaluateAt(rec, now, s.cfg.HeartbeatTimeout) {
	case StatusActive:
		if err := s.touch(ctx, userID, deviceID, now); err != nil {
			return "", err
		}
		return HeartbeatActive, nil
	case StatusExpired:
		if rec.Status == StatusActive {
			if err := s.expire(ctx, now, rec); err != nil {
				return "", err
			}
		}
		return HeartbeatInactive, nil
	default:
		return HeartbeatInactive, nil
	}
}

// ForceEvict marks the target device's session evicted. This is the explicit
// alternative to implicit eviction: it runs only on user choice, and the
// evicted device observes Inactive on its next heartbeat.
func (s *Service) ForceEvict(ctx context.Context, now time.Time, userID, deviceID string) (EvictStatus, error) {
	userID, deviceID, err := normalizeIDs(userID, deviceID)
	if err != nil {
		return "", err
	}

	l := s.locks.acquire(userID)
	defer s.locks.release(userID, l)

	rec, err := s.get(ctx, userID, deviceID)
	if errors.Is(err, ErrNotFound) {
		return EvictNotFound, nil
	}
	if err != nil {
		return "", err
	}

	switch EvaluateAt(rec, now, s.cfg.HeartbeatTimeout) {
	case StatusActive:
		if err := s.setStatus(ctx, userID, deviceID, StatusEvicted, now); err != nil {
			return "", err
		}
		s.emitter.Emit(notify.Event{Type: notify.EventEvicted, UserID: userID, DeviceID: deviceID, At: now})
		s.log.Info("arbiter.evict", "user_id", userID, "device_id", deviceID)
		return EvictDone, nil
	case StatusExpired:
		// Already dead; persist the expiry if it was only just observed.
		if rec.Status == StatusActive {
			if err := s.expire(ctx, now, rec); err != nil {
				return "", err
			}
		}
		return EvictNotFound, nil
	default:
		return EvictNotFound, nil
	}
}

// Logout removes the device's own session. Idempotent: logging out a device
// with no session is a no-op.
func (s *Service) Logout(ctx context.Context, userID, deviceID string) error {
	userID, deviceID, err := normalizeIDs(userID, deviceID)
	if err != nil {
		return err
	}

	l := s.locks.acquire(userID)
	defer s.locks.release(userID, l)

	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.Delete(cctx, userID, deviceID); err != nil {
		return err
	}

	s.log.Info("arbiter.logout", "user_id", userID, "device_id", deviceID)
	return nil
}

// Devices returns the user's live sessions for UI display, ordered by
// created_at ascending, after lazily expiring stale ones.
func (s *Service) Devices(ctx context.Context, now time.Time, userID string) ([]Record, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrValidation
	}

	l := s.locks.acquire(userID)
	defer s.locks.release(userID, l)

	return s.loadLive(ctx, now, userID)
}

// loadLive fetches the user's active records and applies the liveness
// evaluator, persisting (and emitting) expiries it discovers. Caller must
// hold the user's lock.
func (s *Service) loadLive(ctx context.Context, now time.Time, userID string) ([]Record, error) {
	cctx, cancel := s.storeCtx(ctx)
	recs, err := s.store.GetActiveByUser(cctx, userID)
	cancel()
	if err != nil {
		return nil, err
	}

	live := recs[:0]
	for _, rec := range recs {
		if EvaluateAt(rec, now, s.cfg.HeartbeatTimeout) == StatusActive {
			live = append(live, rec)
			continue
		}
		if err := s.expire(ctx, now, rec); err != nil {
			return nil, err
		}
	}
	return live, nil
}

func (s *Service) expire(ctx context.Context, now time.Time, rec Record) error {
	if err := s.setStatus(ctx, rec.UserID, rec.DeviceID, StatusExpired, now); err != nil {
		return err
	}
	s.emitter.Emit(notify.Event{Type: notify.EventExpired, UserID: rec.UserID, DeviceID: rec.DeviceID, At: now})
	s.log.Info("arbiter.expire", "user_id", rec.UserID, "device_id", rec.DeviceID, "last_seen_at", rec.LastSeenAt)
	return nil
}

// ---- store helpers, each under the configured deadline ----

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

func (s *Service) get(ctx context.Context, userID, deviceID string) (Record, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.Get(cctx, userID, deviceID)
}

func (s *Service) upsert(ctx context.Context, rec Record) error {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.Upsert(cctx, rec)
}

func (s *Service) touch(ctx context.Context, userID, deviceID string, at time.Time) error {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.Touch(cctx, userID, deviceID, at)
}

func (s *Service) setStatus(ctx context.Context, userID, deviceID string, status Status, at time.Time) error {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.SetStatus(cctx, userID, deviceID, status, at)
}

func normalizeIDs(userID, deviceID string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	deviceID = strings.TrimSpace(deviceID)
	if userID == "" || deviceID == "" {
		return "", "", ErrValidation
	}
	return userID, deviceID, nil
}
