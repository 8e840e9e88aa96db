package app

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("WARDEN_HTTP_ADDR", "")
	t.Setenv("WARDEN_DATABASE_URL", "")
	t.Setenv("WARDEN_REDIS_ADDR", "")

	cfg := LoadConfig()
	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("http addr: got=%q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("log defaults: level=%q format=%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.DatabaseURL != "" || cfg.RedisAddr != "" {
		t.Fatalf("store defaults should be empty: db=%q redis=%q", cfg.DatabaseURL, cfg.RedisAddr)
	}
	if cfg.ReadinessRequireStore {
		t.Fatal("readiness gate should default off")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("WARDEN_HTTP_ADDR", "127.0.0.1:9090")
	t.Setenv("WARDEN_LOG_FORMAT", "pretty")
	t.Setenv("WARDEN_HTTP_READ_TIMEOUT", "30s")
	t.Setenv("WARDEN_DB_MAX_CONNS", "25")
	t.Setenv("WARDEN_READINESS_REQUIRE_STORE", "true")

	cfg := LoadConfig()
	if cfg.HTTPAddr != "127.0.0.1:9090" {
		t.Fatalf("http addr: got=%q", cfg.HTTPAddr)
	}
	if cfg.LogFormat != "pretty" {
		t.Fatalf("log format: got=%q", cfg.LogFormat)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Fatalf("read timeout: got=%v", cfg.ReadTimeout)
	}
	if cfg.DBMaxConns != 25 {
		t.Fatalf("db max conns: got=%d", cfg.DBMaxConns)
	}
	if !cfg.ReadinessRequireStore {
		t.Fatal("readiness gate should be on")
	}
}

func TestEnvHelpers_IgnoreInvalidValues(t *testing.T) {
	t.Setenv("WARDEN_TEST_INT", "not-a-number")
	t.Setenv("WARDEN_TEST_DURATION", "-5s")
	t.Setenv("WARDEN_TEST_BOOL", "maybe")

	if got := EnvInt("WARDEN_TEST_INT", 7); got != 7 {
		t.Fatalf("EnvInt: got=%d want=7", got)
	}
	if got := EnvDuration("WARDEN_TEST_DURATION", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration: got=%v want=1m", got)
	}
	if got := EnvBool("WARDEN_TEST_BOOL", true); got != true {
		t.Fatalf("EnvBool: got=%v want=true", got)
	}
}
