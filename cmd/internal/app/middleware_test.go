package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestLogging_PassesThrough(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}), log)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status: got=%d want=%d", rr.Code, http.StatusTeapot)
	}
	if rr.Body.String() != "short and stout" {
		t.Fatalf("body: got=%q", rr.Body.String())
	}
}

func TestLoggingResponseWriter_TracksStatusAndBytes(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	lrw := &loggingResponseWriter{ResponseWriter: rr, status: http.StatusOK}

	lrw.WriteHeader(http.StatusCreated)
	n, err := lrw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != 5 || lrw.bytes != 5 {
		t.Fatalf("bytes: n=%d tracked=%d want 5", n, lrw.bytes)
	}
	if lrw.status != http.StatusCreated {
		t.Fatalf("status: got=%d want=%d", lrw.status, http.StatusCreated)
	}
}

func TestLoggingResponseWriter_Unwrap(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	lrw := &loggingResponseWriter{ResponseWriter: rr}

	if lrw.Unwrap() != rr {
		t.Fatal("Unwrap must return the wrapped writer")
	}
	// Flush on a non-flushing writer must be a no-op, not a panic.
	lrw.Flush()
}
