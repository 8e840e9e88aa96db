// Package sessionapi exposes the session arbiter over HTTP JSON.
//
// The API trusts user_id as asserted by an external identity layer
// (gateway, reverse proxy, or upstream auth service); credential
// verification is out of scope here.
package sessionapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"warden/cmd/internal/session"
)

// Handler serves the /api/v1/sessions endpoints.
type Handler struct {
	log *slog.Logger
	cfg Config
	arb *session.Service
}

// NewHandler constructs a Handler around the arbiter.
func NewHandler(log *slog.Logger, cfg Config, arb *session.Service) *Handler {
	return &Handler{log: log, cfg: cfg, arb: arb}
}

// Register mounts the session routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/sessions/login", h.handleLogin)
	mux.HandleFunc("/api/v1/sessions/heartbeat", h.handleHeartbeat)
	mux.HandleFunc("/api/v1/sessions/force_evict", h.handleForceEvict)
	mux.HandleFunc("/api/v1/sessions/logout", h.handleLogout)
	mux.HandleFunc("/api/v1/sessions/devices", h.handleDevices)
}

func (h *Handler) decodeSessionRequest(w http.ResponseWriter, r *http.Request, op string) (sessionRequest, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return sessionRequest{}, false
	}
	var req sessionRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		requestFailuresTotal.WithLabelValues(op, "invalid_json").Inc()
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return sessionRequest{}, false
	}
	return req, true
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r, "login")
	if !ok {
		return
	}

	res, err := h.arb.Login(r.Context(), time.Now().UTC(), req.UserID, req.DeviceID)
	if err != nil {
		h.writeArbiterError(w, "login", err)
		return
	}

	loginsTotal.WithLabelValues(string(res.Status)).Inc()
	writeJSON(w, http.StatusOK, loginResponse{
		Status:  string(res.Status),
		Devices: toDeviceResponses(res.Devices),
	})
}

func (h *Handler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r, "heartbeat")
	if !ok {
		return
	}

	status, err := h.arb.Heartbeat(r.Context(), time.Now().UTC(), req.UserID, req.DeviceID)
	if err != nil {
		h.writeArbiterError(w, "heartbeat", err)
		return
	}

	heartbeatsTotal.WithLabelValues(string(status)).Inc()
	writeJSON(w, http.StatusOK, statusResponse{Status: string(status)})
}

func (h *Handler) handleForceEvict(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r, "force_evict")
	if !ok {
		return
	}

	status, err := h.arb.ForceEvict(r.Context(), time.Now().UTC(), req.UserID, req.DeviceID)
	if err != nil {
		h.writeArbiterError(w, "force_evict", err)
		return
	}

	evictionsTotal.WithLabelValues(string(status)).Inc()
	writeJSON(w, http.StatusOK, statusResponse{Status: string(status)})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSessionRequest(w, r, "logout")
	if !ok {
		return
	}

	if err := h.arb.Logout(r.Context(), req.UserID, req.DeviceID); err != nil {
		h.writeArbiterError(w, "logout", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	recs, err := h.arb.Devices(r.Context(), time.Now().UTC(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.writeArbiterError(w, "devices", err)
		return
	}

	writeJSON(w, http.StatusOK, devicesResponse{Devices: toDeviceResponses(recs)})
}

// writeArbiterError maps arbiter errors to HTTP responses. Store failures
// are surfaced as 503 so clients retry instead of treating their session as
// dead.
func (h *Handler) writeArbiterError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, session.ErrValidation) {
		requestFailuresTotal.WithLabelValues(op, "invalid_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id and device_id are required")
		return
	}

	requestFailuresTotal.WithLabelValues(op, "store").Inc()
	h.log.Error("api."+op+".store.fail", "error", err)
	writeError(w, http.StatusServiceUnavailable, "store_unavailable", "please retry later")
}
