package app

import (
	"net/http"
	"time"

	"warden/cmd/internal/notify"
	sessionapi "warden/cmd/internal/session/api"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	cfg Config,
	backend *storeBackend,
	sessions *sessionapi.Handler,
	ws *notify.WSGateway,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireStore && !backend.durable {
			http.Error(w, "store not configured", http.StatusServiceUnavailable)
			return
		}

		if err := backend.ready(r.Context(), 2*time.Second); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			log.Info("readyz.store.not_ready", "err", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	sessions.Register(mux)

	mux.HandleFunc("/api/v1/notifications/ws", ws.HandleWS)
}
