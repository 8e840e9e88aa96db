package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// If true:
	// - /readyz returns 503 unless a durable store is configured and reachable.
	ReadinessRequireStore bool
}

// LoadConfig loads Config from environment variables with defaults.
//
// Store selection: WARDEN_DATABASE_URL wins if set, then WARDEN_REDIS_ADDR,
// then the in-memory dev store.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("WARDEN_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("WARDEN_LOG_LEVEL", "info"),
		LogFormat: EnvString("WARDEN_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("WARDEN_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("WARDEN_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("WARDEN_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("WARDEN_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("WARDEN_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("WARDEN_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("WARDEN_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("WARDEN_DB_MIN_CONNS", 0),

		RedisAddr:     EnvString("WARDEN_REDIS_ADDR", ""),
		RedisPassword: EnvString("WARDEN_REDIS_PASSWORD", ""),
		RedisDB:       EnvInt("WARDEN_REDIS_DB", 0),

		ReadinessRequireStore: EnvBool("WARDEN_READINESS_REQUIRE_STORE", false),
	}
}
