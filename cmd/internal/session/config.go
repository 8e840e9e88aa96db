package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines all runtime configuration for the arbitration core.
//
// It controls the device cap, heartbeat policy, store call deadlines, and
// record retention. This struct is intentionally explicit and
// environment-driven so that deployments can tune policy without code
// changes.
type Config struct {
	// MaxDevices is the device limit N: the maximum number of
	// simultaneously active sessions permitted per user.
	MaxDevices int

	// HeartbeatInterval is the cadence clients are expected to beat at.
	// It is advisory on the server side; only HeartbeatTimeout affects
	// liveness decisions.
	HeartbeatInterval time.Duration

	// HeartbeatTimeout is how long a session may go without a heartbeat
	// before it is considered expired. Must exceed HeartbeatInterval by a
	// safety margin to tolerate jitter and dropped packets.
	HeartbeatTimeout time.Duration

	// StoreTimeout bounds every individual store call. On timeout the
	// caller receives a transient failure, never a session-state verdict.
	StoreTimeout time.Duration

	// RetentionWindow is how long evicted/expired records are kept before
	// the reaper may reclaim them. Housekeeping only; correctness never
	// depends on it.
	RetentionWindow time.Duration

	// ReapEvery is the reaper cadence. Zero disables the reaper.
	ReapEvery time.Duration
}

// DefaultConfig returns defaults suitable for development: three devices,
// 30s heartbeats, and a 90s timeout (three missed beats).
func DefaultConfig() Config {
	return Config{
		MaxDevices:        3,
		HeartbeatInterval: 30 * time.Second,
		HeartbeatTimeout:  90 * time.Second,
		StoreTimeout:      3 * time.Second,
		RetentionWindow:   24 * time.Hour,
		ReapEvery:         1 * time.Hour,
	}
}

// LoadConfigFromEnv loads arbitration configuration from environment
// variables.
//
// Optional (durations must be valid Go duration strings):
//   - WARDEN_MAX_DEVICES
//   - WARDEN_HEARTBEAT_INTERVAL
//   - WARDEN_HEARTBEAT_TIMEOUT
//   - WARDEN_STORE_TIMEOUT
//   - WARDEN_RETENTION_WINDOW
//   - WARDEN_REAP_EVERY ("0" disables the reaper)
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("WARDEN_MAX_DEVICES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, ErrConfig
		}
		cfg.MaxDevices = n
	}

	if v := os.Getenv("WARDEN_HEARTBEAT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.HeartbeatInterval = d
	}

	if v := os.Getenv("WARDEN_HEARTBEAT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.HeartbeatTimeout = d
	}

	if v := os.Getenv("WARDEN_STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.StoreTimeout = d
	}

	if v := os.Getenv("WARDEN_RETENTION_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RetentionWindow = d
	}

	if v := os.Getenv("WARDEN_REAP_EVERY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ReapEvery = d
	}

	// Invariant: the timeout must outlast the expected beat cadence, or
	// healthy clients would be expired between beats.
	if cfg.HeartbeatTimeout <= cfg.HeartbeatInterval {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
