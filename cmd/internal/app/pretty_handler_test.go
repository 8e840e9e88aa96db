package app

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandler_PlainOutput(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	h := newPrettyHandler(&sb, &slog.HandlerOptions{Level: slog.LevelDebug}, false)
	log := slog.New(h)

	log.Info("server.start", "addr", "127.0.0.1:8080", "note", "two words")

	out := sb.String()
	for _, want := range []string{"[INFO]", "msg=server.start", "addr=127.0.0.1:8080", `note="two words"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("color disabled but output has ANSI codes: %q", out)
	}
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	h := newPrettyHandler(&sb, &slog.HandlerOptions{Level: slog.LevelWarn}, false)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be filtered at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error should pass at warn level")
	}
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	h := newPrettyHandler(&sb, nil, false)
	log := slog.New(h).With("component", "arbiter")

	log.Info("arbiter.login.accepted", "user_id", "u1")

	out := sb.String()
	if !strings.Contains(out, "component=arbiter") {
		t.Fatalf("output missing bound attr: %s", out)
	}
	if !strings.Contains(out, "user_id=u1") {
		t.Fatalf("output missing attr: %s", out)
	}
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	h := newPrettyHandler(&sb, nil, false)
	log := slog.New(h).WithGroup("req")

	log.Info("http.request", "user_id", "u1")

	if out := sb.String(); !strings.Contains(out, "req.user_id=u1") {
		t.Fatalf("output missing grouped attr: %s", out)
	}
}
