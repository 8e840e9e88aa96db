package sessionapi

import (
	"os"
	"strconv"

	"warden/cmd/internal/session"
)

// Config holds HTTP-surface settings for the session endpoints.
type Config struct {
	// MaxBodyBytes caps request body size for JSON endpoints.
	MaxBodyBytes int64
}

// DefaultConfig returns sane defaults for development.
func DefaultConfig() Config {
	return Config{MaxBodyBytes: 1 << 16}
}

// LoadConfigFromEnv loads API configuration from the environment.
//
// Optional:
//   - WARDEN_API_MAX_BODY_BYTES
//
// Returns session.ErrConfig if a value is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("WARDEN_API_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return Config{}, session.ErrConfig
		}
		cfg.MaxBodyBytes = n
	}

	return cfg, nil
}
