package session

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("WARDEN_MAX_DEVICES", "")
	t.Setenv("WARDEN_HEARTBEAT_INTERVAL", "")
	t.Setenv("WARDEN_HEARTBEAT_TIMEOUT", "")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxDevices != 3 {
		t.Fatalf("max devices: got=%d want=3", cfg.MaxDevices)
	}
	if cfg.HeartbeatInterval != 30*time.Second {
		t.Fatalf("heartbeat interval: got=%v", cfg.HeartbeatInterval)
	}
	if cfg.HeartbeatTimeout != 90*time.Second {
		t.Fatalf("heartbeat timeout: got=%v", cfg.HeartbeatTimeout)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("WARDEN_MAX_DEVICES", "5")
	t.Setenv("WARDEN_HEARTBEAT_INTERVAL", "10s")
	t.Setenv("WARDEN_HEARTBEAT_TIMEOUT", "45s")
	t.Setenv("WARDEN_STORE_TIMEOUT", "500ms")
	t.Setenv("WARDEN_RETENTION_WINDOW", "1h")
	t.Setenv("WARDEN_REAP_EVERY", "0")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxDevices != 5 {
		t.Fatalf("max devices: got=%d want=5", cfg.MaxDevices)
	}
	if cfg.HeartbeatInterval != 10*time.Second {
		t.Fatalf("interval: got=%v", cfg.HeartbeatInterval)
	}
	if cfg.HeartbeatTimeout != 45*time.Second {
		t.Fatalf("timeout: got=%v", cfg.HeartbeatTimeout)
	}
	if cfg.StoreTimeout != 500*time.Millisecond {
		t.Fatalf("store timeout: got=%v", cfg.StoreTimeout)
	}
	if cfg.RetentionWindow != time.Hour {
		t.Fatalf("retention: got=%v", cfg.RetentionWindow)
	}
	if cfg.ReapEvery != 0 {
		t.Fatalf("reap every: got=%v want=0", cfg.ReapEvery)
	}
}

func TestLoadConfigFromEnv_InvalidValues(t *testing.T) {
	cases := []struct {
		key string
		val string
	}{
		{"WARDEN_MAX_DEVICES", "0"},
		{"WARDEN_MAX_DEVICES", "abc"},
		{"WARDEN_HEARTBEAT_INTERVAL", "-10s"},
		{"WARDEN_HEARTBEAT_TIMEOUT", "nope"},
		{"WARDEN_STORE_TIMEOUT", "0"},
		{"WARDEN_REAP_EVERY", "-1h"},
	}

	for _, tc := range cases {
		t.Run(tc.key+"="+tc.val, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := LoadConfigFromEnv(); err != ErrConfig {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestLoadConfigFromEnv_TimeoutMustExceedInterval(t *testing.T) {
	t.Setenv("WARDEN_HEARTBEAT_INTERVAL", "60s")
	t.Setenv("WARDEN_HEARTBEAT_TIMEOUT", "60s")

	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for timeout <= interval, got %v", err)
	}
}
